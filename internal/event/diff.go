package event

import (
	"fmt"
	"sort"
	"time"
)

// Change types reported by DetectChanges.
const (
	ChangeNew      = "new"
	ChangeRemoved  = "removed"
	ChangeName     = "name"
	ChangeLocation = "location"
	ChangeBegin    = "begin"
	ChangeDuration = "duration"
	ChangeSchedule = "schedule"
)

// Snapshot is the set of records produced by one run.
type Snapshot struct {
	Records   map[string]*Record `json:"records"`    // keyed by Record.ID
	UpdatedAt string             `json:"updated_at"` // RFC3339 timestamp
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Records: make(map[string]*Record),
	}
}

// CreateSnapshot creates a snapshot from a list of records
func CreateSnapshot(records []*Record, updatedAt string) *Snapshot {
	snap := NewSnapshot()
	snap.UpdatedAt = updatedAt
	for _, rec := range records {
		snap.Records[rec.ID] = rec
	}
	return snap
}

// Change is one difference between a previous and current record.
type Change struct {
	RecordID   string `json:"record_id"`
	Name       string `json:"name"`
	ChangeType string `json:"change_type"`
	OldValue   string `json:"old_value,omitempty"`
	NewValue   string `json:"new_value,omitempty"`
}

func (c *Change) String() string {
	switch c.ChangeType {
	case ChangeNew, ChangeRemoved:
		return fmt.Sprintf("%s: %s", c.ChangeType, c.Name)
	default:
		return fmt.Sprintf("%s: %s changed from %q to %q", c.Name, c.ChangeType, c.OldValue, c.NewValue)
	}
}

// DetectChanges compares two versions of a record. A nil previous means
// the record is new.
func DetectChanges(previous, current *Record) []*Change {
	if previous == nil {
		return []*Change{{RecordID: current.ID, Name: current.Name, ChangeType: ChangeNew}}
	}

	var changes []*Change
	add := func(kind, oldValue, newValue string) {
		if oldValue == newValue {
			return
		}
		changes = append(changes, &Change{
			RecordID:   current.ID,
			Name:       current.Name,
			ChangeType: kind,
			OldValue:   oldValue,
			NewValue:   newValue,
		})
	}

	add(ChangeName, previous.Name, current.Name)
	add(ChangeLocation, previous.Location, current.Location)
	if !previous.Begin.Equal(current.Begin) {
		add(ChangeBegin, previous.Begin.UTC().Format(time.RFC3339), current.Begin.UTC().Format(time.RFC3339))
	}
	add(ChangeDuration, previous.Duration.String(), current.Duration.String())
	add(ChangeSchedule, previous.Description, current.Description)

	return changes
}

// Diff compares current records against a previous snapshot. Changes are
// returned in the order of current, followed by removals sorted by name.
func Diff(previous *Snapshot, current []*Record) []*Change {
	if previous == nil {
		previous = NewSnapshot()
	}

	var changes []*Change
	seen := make(map[string]bool, len(current))
	for _, rec := range current {
		seen[rec.ID] = true
		changes = append(changes, DetectChanges(previous.Records[rec.ID], rec)...)
	}

	var removed []*Change
	for id, rec := range previous.Records {
		if !seen[id] {
			removed = append(removed, &Change{RecordID: id, Name: rec.Name, ChangeType: ChangeRemoved})
		}
	}
	sort.Slice(removed, func(i, j int) bool {
		return removed[i].Name < removed[j].Name
	})

	return append(changes, removed...)
}
