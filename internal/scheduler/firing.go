package scheduler

import "github.com/chronoplan/chronoplan/internal/model"

// firingRecord maps a task id to the occurrence it last fired for. A task
// counts as fired only while its current occurrence still matches.
type firingRecord map[string]model.Occurrence

func (r firingRecord) mark(id string, occ model.Occurrence) {
	r[id] = occ
}

func (r firingRecord) firedFor(id string, occ model.Occurrence) bool {
	got, ok := r[id]
	return ok && got == occ
}

func (r firingRecord) clear(id string) {
	delete(r, id)
}

// prune drops entries for deleted tasks and for tasks whose schedule moved,
// which re-arms them for the new slot.
func (r firingRecord) prune(tasks []model.Task) {
	if len(r) == 0 {
		return
	}
	current := make(map[string]model.Occurrence, len(tasks))
	for _, t := range tasks {
		current[t.ID] = t.Occurrence()
	}
	for id, occ := range r {
		if cur, ok := current[id]; !ok || cur != occ {
			delete(r, id)
		}
	}
}
