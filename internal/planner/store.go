// Package planner owns the task collection and the list names. Every
// mutation is applied in memory first and then handed to the persistence
// sink; memory stays authoritative when the sink fails.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chronoplan/chronoplan/internal/model"
)

var (
	ErrNotFound      = errors.New("planner: task not found")
	ErrDuplicateList = errors.New("planner: list already exists")
	ErrInvalidList   = errors.New("planner: list name is required")
	ErrPersistence   = errors.New("planner: persist failed")
)

// Sink is the external key-value store the planner saves into.
type Sink interface {
	Load(ctx context.Context) (model.Snapshot, error)
	SaveTasks(ctx context.Context, tasks []model.Task) error
	SaveLists(ctx context.Context, lists []string) error
	// Clear drops everything the sink holds, settings included.
	Clear(ctx context.Context) error
}

// DefaultLists are created on first launch.
var DefaultLists = []string{"Work", "Personal", "Fitness", "Shopping"}

type Options struct {
	Sink   Sink
	Logger *log.Logger
	// NewID generates task ids. Defaults to random UUIDs.
	NewID func() string
	// Now supplies the date used for first-launch seed tasks.
	Now func() time.Time
}

type Store struct {
	mu    sync.Mutex
	tasks []model.Task
	index map[string]int
	lists []string

	// saveMu is taken before mu is released so saves land in mutation order
	// without holding mu across sink I/O.
	saveMu sync.Mutex

	sink   Sink
	logger *log.Logger
	newID  func() string
	now    func() time.Time
}

func New(opts Options) *Store {
	s := &Store{
		index:  make(map[string]int),
		sink:   opts.Sink,
		logger: opts.Logger,
		newID:  opts.NewID,
		now:    opts.Now,
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Load replaces the in-memory state with the sink's snapshot. Keys the sink
// has never stored are seeded with the first-launch defaults.
func (s *Store) Load(ctx context.Context) error {
	var snap model.Snapshot
	if s.sink != nil {
		loaded, err := s.sink.Load(ctx)
		if err != nil {
			return fmt.Errorf("load planner state: %w", err)
		}
		snap = loaded
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if snap.HasTasks {
		s.setTasksLocked(snap.Tasks)
	} else {
		s.setTasksLocked(SeedTasks(s.now()))
	}
	if snap.HasLists {
		s.lists = dedupeLists(snap.Lists)
	} else {
		s.lists = slices.Clone(DefaultLists)
	}
	return nil
}

// Reset wipes the sink, restores the first-launch tasks and lists and
// persists both collections.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	s.setTasksLocked(SeedTasks(s.now()))
	s.lists = slices.Clone(DefaultLists)
	tasks := slices.Clone(s.tasks)
	lists := slices.Clone(s.lists)
	s.saveMu.Lock()
	s.mu.Unlock()
	defer s.saveMu.Unlock()

	var clearErr error
	if s.sink != nil {
		if err := s.sink.Clear(ctx); err != nil {
			s.logger.Printf("planner: clear: %v", err)
			clearErr = fmt.Errorf("%w: clear: %w", ErrPersistence, err)
		}
	}
	return errors.Join(clearErr, s.saveTasks(ctx, tasks), s.saveLists(ctx, lists))
}

func (s *Store) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	task := model.Task{
		Title:       in.Title,
		Description: in.Description,
		Date:        in.Date,
		Time:        in.Time,
		List:        in.List,
		Reminder:    in.Reminder,
	}

	s.mu.Lock()
	task.ID = s.newID()
	if err := task.Validate(); err != nil {
		s.mu.Unlock()
		return model.Task{}, err
	}
	if _, exists := s.index[task.ID]; exists {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("planner: duplicate task id %q", task.ID)
	}
	s.index[task.ID] = len(s.tasks)
	s.tasks = append(s.tasks, task)
	return task, s.commitTasksLocked(ctx)
}

// Update writes the patch over the task. Nothing changes when the task is
// missing or the patched task does not validate.
func (s *Store) Update(ctx context.Context, id string, patch model.TaskPatch) (model.Task, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	next := patch.Apply(s.tasks[i])
	if err := next.Validate(); err != nil {
		s.mu.Unlock()
		return model.Task{}, err
	}
	s.tasks[i] = next
	return next, s.commitTasksLocked(ctx)
}

// Delete removes the task. Deleting an unknown id is not an error.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return nil
	}
	s.tasks = slices.Delete(s.tasks, i, i+1)
	s.reindexLocked()
	return s.commitTasksLocked(ctx)
}

func (s *Store) ToggleComplete(ctx context.Context, id string) (model.Task, error) {
	s.mu.Lock()
	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return model.Task{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.tasks[i].Completed = !s.tasks[i].Completed
	task := s.tasks[i]
	return task, s.commitTasksLocked(ctx)
}

func (s *Store) Get(id string) (model.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.index[id]
	if !ok {
		return model.Task{}, false
	}
	return s.tasks[i], true
}

// ListAll returns a copy of every task in insertion order.
func (s *Store) ListAll() []model.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

func (s *Store) AddList(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidList
	}

	s.mu.Lock()
	if slices.Contains(s.lists, name) {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDuplicateList, name)
	}
	s.lists = append(s.lists, name)
	lists := slices.Clone(s.lists)
	s.saveMu.Lock()
	s.mu.Unlock()
	defer s.saveMu.Unlock()
	return s.saveLists(ctx, lists)
}

func (s *Store) ListNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.lists)
}

// commitTasksLocked snapshots the tasks, releases mu and saves the snapshot.
// It must be called with mu held and always leaves it unlocked.
func (s *Store) commitTasksLocked(ctx context.Context) error {
	tasks := slices.Clone(s.tasks)
	s.saveMu.Lock()
	s.mu.Unlock()
	defer s.saveMu.Unlock()
	return s.saveTasks(ctx, tasks)
}

func (s *Store) saveTasks(ctx context.Context, tasks []model.Task) error {
	if s.sink == nil {
		return nil
	}
	if err := s.sink.SaveTasks(ctx, tasks); err != nil {
		s.logger.Printf("planner: save tasks: %v", err)
		return fmt.Errorf("%w: save tasks: %w", ErrPersistence, err)
	}
	return nil
}

func (s *Store) saveLists(ctx context.Context, lists []string) error {
	if s.sink == nil {
		return nil
	}
	if err := s.sink.SaveLists(ctx, lists); err != nil {
		s.logger.Printf("planner: save lists: %v", err)
		return fmt.Errorf("%w: save lists: %w", ErrPersistence, err)
	}
	return nil
}

func (s *Store) setTasksLocked(tasks []model.Task) {
	s.tasks = make([]model.Task, 0, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if t.ID == "" || seen[t.ID] {
			s.logger.Printf("planner: dropping task with empty or duplicate id %q", t.ID)
			continue
		}
		seen[t.ID] = true
		s.tasks = append(s.tasks, t)
	}
	s.reindexLocked()
}

func (s *Store) reindexLocked() {
	s.index = make(map[string]int, len(s.tasks))
	for i, t := range s.tasks {
		s.index[t.ID] = i
	}
}

func dedupeLists(in []string) []string {
	out := make([]string, 0, len(in))
	for _, name := range in {
		name = strings.TrimSpace(name)
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

// SeedTasks returns the two tasks a fresh planner starts with.
func SeedTasks(now time.Time) []model.Task {
	today := now.Format(model.DateLayout)
	return []model.Task{
		{
			ID:          "1",
			Title:       "Welcome to ChronoPlan!",
			Description: "Start organizing your schedule with style.",
			Date:        today,
			Time:        "09:00",
			List:        "Personal",
			Reminder:    true,
		},
		{
			ID:          "2",
			Title:       "Design Team Meeting",
			Description: "Discuss new glassmorphism UI updates.",
			Date:        today,
			Time:        "14:30",
			List:        "Work",
			Completed:   true,
		},
	}
}
