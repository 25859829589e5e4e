package models

import "time"

// EventKind identifies a record lifecycle event variant.
type EventKind string

const (
	KindCreated EventKind = "created"
	KindUpdated EventKind = "updated"
	KindDeleted EventKind = "deleted"
)

// Metric field names carried in update/delete field maps.
const (
	FieldSteps      = "steps"
	FieldSleepHours = "sleep_hours"
	FieldHeartRate  = "heart_rate"
	FieldWeight     = "weight"
)

// CreatedFields carries the metric values contributed by a new record.
type CreatedFields struct {
	Steps      int64    `json:"steps"`
	SleepHours float64  `json:"sleep_hours"`
	Weight     float64  `json:"weight"`
	HeartRate  *int     `json:"heart_rate,omitempty"`
}

// UpdatedFields carries the changed values and the values they replaced.
// Both maps are keyed by metric field name.
type UpdatedFields struct {
	Changed  map[string]float64 `json:"updated_fields"`
	Previous map[string]float64 `json:"old_data"`
}

// DeletedFields carries the metric values the removed record had
// contributed.
type DeletedFields struct {
	Removed map[string]float64 `json:"deleted_record"`
}

// RecordEvent is the decoded lifecycle event consumed by the applier, a
// tagged union dispatched by Kind. Exactly one of Created, Updated, Deleted
// is non-nil, matching Kind.
type RecordEvent struct {
	Kind     EventKind
	Username string
	Date     time.Time

	Created *CreatedFields
	Updated *UpdatedFields
	Deleted *DeletedFields
}

// Key returns the serialization key for per-(username, date) exclusivity.
func (e RecordEvent) Key() string {
	return e.Username + "|" + e.Date.Format(DateLayout)
}
