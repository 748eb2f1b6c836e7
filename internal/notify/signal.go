package notify

import (
	"context"
	"errors"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// Bell rings the terminal bell. It has nothing to stop.
type Bell struct {
	mu sync.Mutex
	w  io.Writer
}

func NewBell(w io.Writer) *Bell {
	return &Bell{w: w}
}

func (b *Bell) Play(string, float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, err := io.WriteString(b.w, "\a")
	return err
}

func (b *Bell) Stop() error { return nil }

// Player runs a user-supplied command to play the ringtone and kills it on
// Stop. The placeholders {ringtone} and {volume} in the template are
// substituted before the command is split on whitespace.
type Player struct {
	template string

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewPlayer(template string) (*Player, error) {
	if strings.TrimSpace(template) == "" {
		return nil, errors.New("notify: empty sound command")
	}
	return &Player{template: template}, nil
}

// Command returns the argv Play would run.
func (p *Player) Command(ringtone string, volume float64) []string {
	r := strings.NewReplacer(
		"{ringtone}", ringtone,
		"{volume}", strconv.FormatFloat(volume, 'f', -1, 64),
	)
	return strings.Fields(r.Replace(p.template))
}

// Play starts the sound in the background, stopping any sound still playing.
func (p *Player) Play(ringtone string, volume float64) error {
	if err := p.Stop(); err != nil {
		return err
	}
	argv := p.Command(ringtone, volume)
	if len(argv) == 0 {
		return errors.New("notify: sound command expands to nothing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		cancel()
		return err
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = cmd.Wait()
	}()

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()
	return nil
}

// Stop kills the running sound, if any, and waits for it to exit.
func (p *Player) Stop() error {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	<-done
	return nil
}
