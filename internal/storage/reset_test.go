package storage

import (
	"io"
	"log"
	"testing"

	"github.com/chronoplan/chronoplan/internal/model"
	"github.com/chronoplan/chronoplan/internal/planner"
)

func TestPlannerResetWipesStoredSettings(t *testing.T) {
	sink := NewSink(NewMemoryKV())
	if err := sink.SaveSettings(t.Context(), model.Settings{Ringtone: "siren", Volume: 0.3}); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	store := planner.New(planner.Options{Sink: sink, Logger: log.New(io.Discard, "", 0)})
	if err := store.Load(t.Context()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := store.AddList(t.Context(), "Errands"); err != nil {
		t.Fatalf("add list: %v", err)
	}
	if err := store.Reset(t.Context()); err != nil {
		t.Fatalf("reset: %v", err)
	}

	got, err := sink.LoadSettings(t.Context(), model.DefaultSettings())
	if err != nil {
		t.Fatalf("load settings: %v", err)
	}
	if got != model.DefaultSettings() {
		t.Fatalf("expected default settings after reset, got %+v", got)
	}
	snap, err := sink.Load(t.Context())
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if !snap.HasTasks || len(snap.Tasks) != 2 {
		t.Fatalf("expected seed tasks persisted after reset, got %+v", snap.Tasks)
	}
	for _, name := range snap.Lists {
		if name == "Errands" {
			t.Fatal("expected custom list dropped by reset")
		}
	}
}
