package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chronoplan/chronoplan/internal/model"
)

// Keys under which the planner state is stored.
const (
	TasksKey    = "chronoPlan_tasks"
	ListsKey    = "chronoPlan_lists"
	SettingsKey = "chronoPlan_settings"
)

type taskRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"desc"`
	Date        string `json:"date"`
	Time        string `json:"time"`
	List        string `json:"list"`
	Completed   bool   `json:"completed"`
	Reminder    bool   `json:"reminder"`
}

type settingsRecord struct {
	Ringtone string   `json:"ringtone"`
	Volume   *float64 `json:"volume,omitempty"`
}

// Sink encodes planner state as JSON documents in a KV.
type Sink struct {
	kv KV
}

func NewSink(kv KV) *Sink {
	return &Sink{kv: kv}
}

func (s *Sink) Load(ctx context.Context) (model.Snapshot, error) {
	var snap model.Snapshot

	var tasks []taskRecord
	found, err := s.getJSON(ctx, TasksKey, &tasks)
	if err != nil {
		return model.Snapshot{}, err
	}
	if found {
		snap.HasTasks = true
		snap.Tasks = make([]model.Task, 0, len(tasks))
		for _, rec := range tasks {
			snap.Tasks = append(snap.Tasks, rec.toModel())
		}
	}

	found, err = s.getJSON(ctx, ListsKey, &snap.Lists)
	if err != nil {
		return model.Snapshot{}, err
	}
	snap.HasLists = found
	return snap, nil
}

func (s *Sink) SaveTasks(ctx context.Context, tasks []model.Task) error {
	records := make([]taskRecord, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, fromModel(t))
	}
	return s.putJSON(ctx, TasksKey, records)
}

func (s *Sink) SaveLists(ctx context.Context, lists []string) error {
	if lists == nil {
		lists = []string{}
	}
	return s.putJSON(ctx, ListsKey, lists)
}

// LoadSettings returns the stored settings, filling unset fields from
// defaults.
func (s *Sink) LoadSettings(ctx context.Context, defaults model.Settings) (model.Settings, error) {
	out := defaults
	var rec settingsRecord
	found, err := s.getJSON(ctx, SettingsKey, &rec)
	if err != nil || !found {
		return out, err
	}
	if rec.Ringtone != "" {
		out.Ringtone = rec.Ringtone
	}
	if rec.Volume != nil {
		out.Volume = *rec.Volume
	}
	return out, nil
}

func (s *Sink) SaveSettings(ctx context.Context, settings model.Settings) error {
	volume := settings.Volume
	return s.putJSON(ctx, SettingsKey, settingsRecord{Ringtone: settings.Ringtone, Volume: &volume})
}

// Clear wipes every stored key.
func (s *Sink) Clear(ctx context.Context) error {
	return s.kv.Clear(ctx)
}

func (s *Sink) getJSON(ctx context.Context, key string, out any) (bool, error) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (s *Sink) putJSON(ctx context.Context, key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.kv.Put(ctx, key, raw)
}

func (r taskRecord) toModel() model.Task {
	return model.Task{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		List:        r.List,
		Completed:   r.Completed,
		Reminder:    r.Reminder,
	}
}

func fromModel(t model.Task) taskRecord {
	return taskRecord{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Date:        t.Date,
		Time:        t.Time,
		List:        t.List,
		Completed:   t.Completed,
		Reminder:    t.Reminder,
	}
}
