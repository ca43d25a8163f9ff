package module

// StepStatus is the lifecycle state of a plan step.
type StepStatus string

// Step statuses.
const (
	StatusPending  StepStatus = "pending"
	StatusRunning  StepStatus = "running"
	StatusComplete StepStatus = "complete"
	StatusFailed   StepStatus = "failed"
	StatusBlocked  StepStatus = "blocked"
)

// StepStatuses lists the allowed statuses in sorted order.
var StepStatuses = []StepStatus{StatusBlocked, StatusComplete, StatusFailed, StatusPending, StatusRunning}

// Valid reports whether s is an allowed status.
func (s StepStatus) Valid() bool {
	for _, known := range StepStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// StepRecord is one entry of a plan's steps list.
type StepRecord struct {
	ID        int64
	Action    string
	Status    StepStatus
	DependsOn []int64
	Output    any
	Params    any
	Notes     string
}

// DecodeSteps converts a runtime steps value into records. Entries that
// are not dicts or lack an integer id are skipped; a missing status reads
// as pending and a scalar depends_on as a one-element list.
func DecodeSteps(v any) []StepRecord {
	items, ok := v.(List)
	if !ok {
		return nil
	}
	var steps []StepRecord
	for _, item := range items {
		d, ok := item.(*Dict)
		if !ok {
			continue
		}
		raw, _ := d.Get("id")
		id, ok := AsInt(raw)
		if !ok {
			continue
		}
		step := StepRecord{ID: id, Status: StatusPending}
		if a, ok := d.Get("action"); ok {
			step.Action, _ = a.(string)
		}
		if st, ok := d.Get("status"); ok {
			if s, ok := st.(string); ok {
				step.Status = StepStatus(s)
			}
		}
		if deps, ok := d.Get("depends_on"); ok {
			step.DependsOn = DependencyIDs(deps)
		}
		step.Output, _ = d.Get("output")
		step.Params, _ = d.Get("params")
		if n, ok := d.Get("notes"); ok {
			step.Notes, _ = n.(string)
		}
		steps = append(steps, step)
	}
	return steps
}

// DependencyIDs normalises a depends_on value to a list of integer ids.
// Non-integer entries are dropped.
func DependencyIDs(v any) []int64 {
	var items []any
	switch x := v.(type) {
	case List:
		items = x
	case Tuple:
		items = x
	case nil:
		return nil
	default:
		items = []any{x}
	}
	ids := make([]int64, 0, len(items))
	for _, it := range items {
		if id, ok := AsInt(it); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// CurrentStep returns the first running step.
func CurrentStep(steps []StepRecord) (StepRecord, bool) {
	for _, s := range steps {
		if s.Status == StatusRunning {
			return s, true
		}
	}
	return StepRecord{}, false
}

// NextStep returns the first pending step whose dependencies are all
// complete.
func NextStep(steps []StepRecord) (StepRecord, bool) {
	status := make(map[int64]StepStatus, len(steps))
	for _, s := range steps {
		status[s.ID] = s.Status
	}
	for _, s := range steps {
		if s.Status != StatusPending {
			continue
		}
		ready := true
		for _, dep := range s.DependsOn {
			if status[dep] != StatusComplete {
				ready = false
				break
			}
		}
		if ready {
			return s, true
		}
	}
	return StepRecord{}, false
}

// Progress returns the number of complete steps and the total.
func Progress(steps []StepRecord) (complete, total int) {
	for _, s := range steps {
		if s.Status == StatusComplete {
			complete++
		}
	}
	return complete, len(steps)
}

// IsComplete reports whether every step is complete. A plan with no steps
// is trivially complete.
func IsComplete(steps []StepRecord) bool {
	done, total := Progress(steps)
	return done == total
}
