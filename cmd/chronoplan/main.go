package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/chronoplan/chronoplan/internal/config"
	"github.com/chronoplan/chronoplan/internal/model"
	"github.com/chronoplan/chronoplan/internal/notify"
	"github.com/chronoplan/chronoplan/internal/planner"
	"github.com/chronoplan/chronoplan/internal/scheduler"
	"github.com/chronoplan/chronoplan/internal/storage"
	"github.com/chronoplan/chronoplan/internal/update"
	"github.com/chronoplan/chronoplan/internal/view"
)

func main() {
	os.Exit(run())
}

// run returns the process exit code so deferred cleanup always happens
// before main exits.
func run() int {
	configPath := flag.String("config", config.DefaultConfigFileName, "config file path")
	envFile := flag.String("env", ".env", "dotenv file path")
	storageFlag := flag.String("storage", "", "storage backend: sqlite, file or memory")
	dbPath := flag.String("db", "", "sqlite db path")
	filterFlag := flag.String("filter", "", "list filter: all, today, upcoming or a list name")
	searchFlag := flag.String("search", "", "list search text")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: chronoplan [flags] [run|add|edit <id>|list|watch|reset|ringtone <name>]\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Printf("config: %v", err)
		return 1
	}
	if *storageFlag != "" {
		cfg.Storage = *storageFlag
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *filterFlag != "" {
		cfg.DefaultFilter = *filterFlag
	}
	if err := cfg.Validate(); err != nil {
		log.Printf("config: %v", err)
		return 1
	}

	cmd := flag.Arg(0)
	if cmd == "" {
		cmd = "run"
	}
	switch cmd {
	case "run", "add", "edit", "list", "watch", "reset", "ringtone":
	default:
		flag.Usage()
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The TUI owns the terminal, so logs go to a file there.
	logger := log.New(os.Stderr, "chronoplan: ", log.LstdFlags)
	if cmd == "run" {
		f, err := os.OpenFile("chronoplan.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.SetOutput(io.Discard)
		} else {
			defer f.Close()
			logger.SetOutput(f)
		}
	}

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("startup: %v", err)
		return 1
	}
	defer a.Close()

	rest := strings.TrimSpace(strings.Join(flag.Args()[min(1, flag.NArg()):], " "))
	switch cmd {
	case "run":
		err = a.runTUI(ctx)
	case "add":
		err = a.runAdd(ctx)
	case "edit":
		if rest == "" {
			err = errors.New("edit requires a task id")
			break
		}
		err = a.runEdit(ctx, rest)
	case "list":
		err = a.runList(os.Stdout, *searchFlag)
	case "watch":
		err = a.runWatch(ctx)
	case "reset":
		err = a.resetAll(ctx)
	case "ringtone":
		err = a.saveRingtone(ctx, rest)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "chronoplan %s failed: %v\n", cmd, err)
		return 1
	}
	return 0
}

type app struct {
	cfg    config.Config
	logger *log.Logger
	sink   *storage.Sink
	store  *planner.Store
	engine *scheduler.Engine
	closer io.Closer
}

func newApp(ctx context.Context, cfg config.Config, logger *log.Logger) (*app, error) {
	a := &app{cfg: cfg, logger: logger}

	kv, closer, err := openKV(cfg)
	if err != nil {
		return nil, err
	}
	a.closer = closer
	a.sink = storage.NewSink(kv)

	a.store = planner.New(planner.Options{Sink: a.sink, Logger: logger})
	if err := a.store.Load(ctx); err != nil {
		a.Close()
		return nil, err
	}

	// Settings saved by the user win over the configured defaults.
	settings, err := a.sink.LoadSettings(ctx, model.Settings{Ringtone: cfg.Ringtone, Volume: cfg.Volume})
	if err != nil {
		logger.Printf("load settings: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		a.Close()
		return nil, err
	}

	var signalSink scheduler.Signal = notify.NewBell(os.Stderr)
	if cfg.SoundCommand != "" {
		player, err := notify.NewPlayer(cfg.SoundCommand)
		if err != nil {
			a.Close()
			return nil, err
		}
		signalSink = player
	}
	var notifier scheduler.Notifier = scheduler.NoopNotifier{}
	if cfg.DesktopNotifications {
		notifier = notify.NewDesktop()
	}

	a.engine = scheduler.New(a.store, scheduler.Options{
		Interval:      cfg.PollInterval(),
		Location:      loc,
		Signal:        signalSink,
		Notifier:      notifier,
		Settings:      settings,
		SnoozeMinutes: cfg.SnoozeMinutes,
		Policy:        scheduler.Policy(cfg.AlarmPolicy),
		EventBuffer:   cfg.EventBuffer,
		Logger:        logger,
	})
	return a, nil
}

func openKV(cfg config.Config) (storage.KV, io.Closer, error) {
	switch cfg.Storage {
	case config.StorageFile:
		return storage.NewFileKV(cfg.StatePath), nil, nil
	case config.StorageMemory:
		return storage.NewMemoryKV(), nil, nil
	default:
		kv, err := storage.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv, nil
	}
}

func (a *app) Close() {
	if a.engine != nil {
		a.engine.Stop()
	}
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.logger.Printf("close storage: %v", err)
		}
	}
}

func (a *app) runTUI(ctx context.Context) error {
	a.engine.Start(ctx)
	loc, _ := a.cfg.Location()
	m := update.NewModel(update.Options{
		Store:    a.store,
		Alarms:   a.engine,
		Filter:   view.Filter(a.cfg.DefaultFilter),
		Location: loc,
		Context:  ctx,
	})
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// runWatch runs the engine without a UI and logs every alarm until
// interrupted.
func (a *app) runWatch(ctx context.Context) error {
	a.engine.Start(ctx)
	a.logger.Printf("watching %d tasks every %s", len(a.store.ListAll()), a.cfg.PollInterval())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-a.engine.C():
			title := ev.Alarm.TaskID
			if t, ok := a.store.Get(ev.Alarm.TaskID); ok {
				title = t.Title
			}
			a.logger.Printf("%s: %s at %s", ev.Kind, title, ev.Alarm.Occurrence)
		}
	}
}

func (a *app) runList(w io.Writer, search string) error {
	loc, _ := a.cfg.Location()
	tasks := view.Apply(a.store.ListAll(), view.Query{
		Filter: view.Filter(a.cfg.DefaultFilter),
		Search: search,
		Today:  view.Today(time.Now().In(loc)),
		Lists:  a.store.ListNames(),
	})
	for _, t := range tasks {
		if _, err := fmt.Fprintln(w, formatTask(t)); err != nil {
			return err
		}
	}
	return nil
}

func formatTask(t model.Task) string {
	mark := " "
	if t.Completed {
		mark = "x"
	}
	bell := ""
	if t.Reminder {
		bell = " (reminder)"
	}
	return fmt.Sprintf("[%s] %s %s  %-10s %s%s", mark, t.Date, t.Time, t.List, t.Title, bell)
}

// resetAll clears every stored key, re-seeds the planner and puts the
// alarm settings back to their defaults.
func (a *app) resetAll(ctx context.Context) error {
	err := a.store.Reset(ctx)
	a.engine.SetSettings(model.DefaultSettings())
	return err
}

func (a *app) saveRingtone(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("ringtone name is required")
	}
	settings := a.engine.Settings()
	settings.Ringtone = name
	if err := a.sink.SaveSettings(ctx, settings); err != nil {
		return err
	}
	a.engine.SetSettings(settings)
	fmt.Printf("ringtone set to %s\n", name)
	return nil
}
