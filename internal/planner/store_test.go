package planner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"
	"time"

	"github.com/chronoplan/chronoplan/internal/model"
)

type fakeSink struct {
	mu        sync.Mutex
	snap      model.Snapshot
	loadErr   error
	saveErr   error
	taskSaves [][]model.Task
	listSaves [][]string
	clears    int
}

func (f *fakeSink) Load(context.Context) (model.Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap, f.loadErr
}

func (f *fakeSink) SaveTasks(_ context.Context, tasks []model.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.taskSaves = append(f.taskSaves, tasks)
	return nil
}

func (f *fakeSink) SaveLists(_ context.Context, lists []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.listSaves = append(f.listSaves, lists)
	return nil
}

func (f *fakeSink) Clear(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	f.clears++
	f.taskSaves = nil
	f.listSaves = nil
	return nil
}

func (f *fakeSink) lastTasks(t *testing.T) []model.Task {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.taskSaves) == 0 {
		t.Fatal("expected at least one task save")
	}
	return f.taskSaves[len(f.taskSaves)-1]
}

func newTestStore(t *testing.T, sink *fakeSink) *Store {
	t.Helper()
	n := 0
	s := New(Options{
		Sink:   sink,
		Logger: log.New(io.Discard, "", 0),
		NewID: func() string {
			n++
			return fmt.Sprintf("task-%d", n)
		},
		Now: func() time.Time { return time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC) },
	})
	if sink != nil {
		sink.snap = model.Snapshot{HasTasks: true, HasLists: true, Lists: []string{"Work", "Personal"}}
	}
	if err := s.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return s
}

func sampleInput(title string) model.TaskInput {
	return model.TaskInput{
		Title:    title,
		Date:     "2026-02-09",
		Time:     "09:00",
		List:     "Work",
		Reminder: true,
	}
}

func TestCreateAssignsIDAndPersists(t *testing.T) {
	sink := &fakeSink{}
	s := newTestStore(t, sink)

	task, err := s.Create(t.Context(), sampleInput("Write report"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID != "task-1" || task.Completed {
		t.Fatalf("unexpected created task: %+v", task)
	}
	saved := sink.lastTasks(t)
	if len(saved) != 1 || saved[0].ID != "task-1" {
		t.Fatalf("unexpected saved tasks: %+v", saved)
	}
}

func TestCreateRejectsInvalidTask(t *testing.T) {
	s := newTestStore(t, &fakeSink{})
	in := sampleInput("Bad time")
	in.Time = "25:00"
	if _, err := s.Create(t.Context(), in); !errors.Is(err, model.ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
	if got := len(s.ListAll()); got != 0 {
		t.Fatalf("expected no tasks after rejected create, got %d", got)
	}
}

func TestListAllKeepsInsertionOrder(t *testing.T) {
	s := newTestStore(t, &fakeSink{})
	for _, title := range []string{"c", "a", "b"} {
		in := sampleInput(title)
		if _, err := s.Create(t.Context(), in); err != nil {
			t.Fatalf("create %s: %v", title, err)
		}
	}
	all := s.ListAll()
	if len(all) != 3 || all[0].Title != "c" || all[1].Title != "a" || all[2].Title != "b" {
		t.Fatalf("unexpected order: %+v", all)
	}

	all[0].Title = "mutated"
	if got, _ := s.Get(all[0].ID); got.Title != "c" {
		t.Fatal("ListAll must return copies")
	}
}

func TestUpdateMissingTaskReportsNotFound(t *testing.T) {
	s := newTestStore(t, &fakeSink{})
	title := "x"
	_, err := s.Update(t.Context(), "missing", model.TaskPatch{Title: &title})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateInvalidPatchLeavesTaskUntouched(t *testing.T) {
	s := newTestStore(t, &fakeSink{})
	task, err := s.Create(t.Context(), sampleInput("Stretch"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	title := "Stretch more"
	bad := "9:5"
	_, err = s.Update(t.Context(), task.ID, model.TaskPatch{Title: &title, Time: &bad})
	if !errors.Is(err, model.ErrInvalidTime) {
		t.Fatalf("expected ErrInvalidTime, got %v", err)
	}
	got, _ := s.Get(task.ID)
	if got.Title != "Stretch" || got.Time != "09:00" {
		t.Fatalf("partial mutation happened: %+v", got)
	}
}

func TestToggleComplete(t *testing.T) {
	s := newTestStore(t, &fakeSink{})
	task, err := s.Create(t.Context(), sampleInput("Pay rent"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	toggled, err := s.ToggleComplete(t.Context(), task.ID)
	if err != nil || !toggled.Completed {
		t.Fatalf("expected completed task, got %+v err=%v", toggled, err)
	}
	toggled, err = s.ToggleComplete(t.Context(), task.ID)
	if err != nil || toggled.Completed {
		t.Fatalf("expected reopened task, got %+v err=%v", toggled, err)
	}
	if _, err := s.ToggleComplete(t.Context(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	sink := &fakeSink{}
	s := newTestStore(t, sink)
	a, _ := s.Create(t.Context(), sampleInput("a"))
	b, _ := s.Create(t.Context(), sampleInput("b"))

	if err := s.Delete(t.Context(), a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.Delete(t.Context(), a.ID); err != nil {
		t.Fatalf("second delete must not fail: %v", err)
	}
	if _, ok := s.Get(a.ID); ok {
		t.Fatal("deleted task still present")
	}
	if got, ok := s.Get(b.ID); !ok || got.Title != "b" {
		t.Fatalf("index broken after delete: %+v ok=%v", got, ok)
	}
	if saved := sink.lastTasks(t); len(saved) != 1 {
		t.Fatalf("expected one persisted task, got %+v", saved)
	}
}

func TestAddListRejectsDuplicate(t *testing.T) {
	sink := &fakeSink{}
	s := newTestStore(t, sink)

	if err := s.AddList(t.Context(), "Errands"); err != nil {
		t.Fatalf("add list: %v", err)
	}
	before := len(s.ListNames())
	err := s.AddList(t.Context(), "Errands")
	if !errors.Is(err, ErrDuplicateList) {
		t.Fatalf("expected ErrDuplicateList, got %v", err)
	}
	if got := len(s.ListNames()); got != before {
		t.Fatalf("list size changed: before=%d after=%d", before, got)
	}
	if err := s.AddList(t.Context(), "   "); !errors.Is(err, ErrInvalidList) {
		t.Fatalf("expected ErrInvalidList, got %v", err)
	}
	names := s.ListNames()
	if names[len(names)-1] != "Errands" {
		t.Fatalf("expected insertion order, got %v", names)
	}
	if len(sink.listSaves) != 1 {
		t.Fatalf("expected one list save, got %d", len(sink.listSaves))
	}
}

func TestPersistenceFailureKeepsMemory(t *testing.T) {
	sink := &fakeSink{}
	s := newTestStore(t, sink)
	sink.saveErr = errors.New("disk full")

	task, err := s.Create(t.Context(), sampleInput("Survives"))
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected the created task alongside the persistence error")
	}
	if _, ok := s.Get(task.ID); !ok {
		t.Fatal("in-memory mutation was rolled back")
	}

	if err := s.AddList(t.Context(), "Garden"); !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected ErrPersistence for list save, got %v", err)
	}
	if names := s.ListNames(); names[len(names)-1] != "Garden" {
		t.Fatalf("list rolled back: %v", names)
	}
}

func TestLoadSeedsDefaultsForAbsentKeys(t *testing.T) {
	sink := &fakeSink{}
	s := New(Options{
		Sink:   sink,
		Logger: log.New(io.Discard, "", 0),
		Now:    func() time.Time { return time.Date(2026, 2, 9, 8, 0, 0, 0, time.UTC) },
	})
	if err := s.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}
	names := s.ListNames()
	if len(names) != 4 || names[0] != "Work" || names[3] != "Shopping" {
		t.Fatalf("unexpected default lists: %v", names)
	}
	tasks := s.ListAll()
	if len(tasks) != 2 || tasks[0].Date != "2026-02-09" || !tasks[0].Reminder || !tasks[1].Completed {
		t.Fatalf("unexpected seed tasks: %+v", tasks)
	}
}

func TestLoadKeepsStoredEmptyCollections(t *testing.T) {
	sink := &fakeSink{snap: model.Snapshot{HasTasks: true, HasLists: true, Lists: []string{}}}
	s := New(Options{Sink: sink, Logger: log.New(io.Discard, "", 0)})
	if err := s.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(s.ListAll()) != 0 || len(s.ListNames()) != 0 {
		t.Fatalf("expected empty state, got tasks=%v lists=%v", s.ListAll(), s.ListNames())
	}
}

func TestLoadPropagatesSinkError(t *testing.T) {
	sink := &fakeSink{loadErr: errors.New("corrupt")}
	s := New(Options{Sink: sink, Logger: log.New(io.Discard, "", 0)})
	if err := s.Load(t.Context()); err == nil {
		t.Fatal("expected load error")
	}
}

func TestResetRestoresDefaults(t *testing.T) {
	sink := &fakeSink{}
	s := newTestStore(t, sink)
	if _, err := s.Create(t.Context(), sampleInput("temp")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Reset(t.Context()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if got := len(s.ListAll()); got != 2 {
		t.Fatalf("expected seed tasks after reset, got %d", got)
	}
	if got := len(s.ListNames()); got != len(DefaultLists) {
		t.Fatalf("expected default lists after reset, got %d", got)
	}
	if saved := sink.lastTasks(t); len(saved) != 2 {
		t.Fatalf("reset not persisted: %+v", saved)
	}
	if sink.clears != 1 {
		t.Fatalf("expected the sink wiped once before re-seeding, got %d", sink.clears)
	}
}

func TestResetReportsClearFailure(t *testing.T) {
	sink := &fakeSink{}
	s := newTestStore(t, sink)
	sink.saveErr = errors.New("disk full")
	err := s.Reset(t.Context())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("expected persistence error, got %v", err)
	}
	if got := len(s.ListAll()); got != 2 {
		t.Fatalf("expected seeds in memory despite the failure, got %d", got)
	}
}

func TestConcurrentMutationsPersistLatestState(t *testing.T) {
	sink := &fakeSink{}
	s := newTestStore(t, sink)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Create(context.Background(), sampleInput("concurrent")); err != nil {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := len(s.ListAll()); got != 20 {
		t.Fatalf("expected 20 tasks, got %d", got)
	}
	if saved := sink.lastTasks(t); len(saved) != 20 {
		t.Fatalf("last save should hold every task, got %d", len(saved))
	}
}
