// Package stream decodes transport-delivered event envelopes into the
// engine's event types and defines the source abstraction the worker
// consumes from. The physical transport (broker, queue topology, acks) is
// an external collaborator.
package stream

import (
	"errors"
	"fmt"
	"time"

	"github.com/vitalflow/analytics/internal/models"
)

// ErrMissingTimestamp marks an update or delete whose event date cannot be
// derived. There is no safe default date for compensation, so these events
// are dropped by the caller rather than applied.
var ErrMissingTimestamp = errors.New("event has no usable timestamp")

// Envelope is the decoded wire shape of a record lifecycle event, matching
// the JSON published by the record service.
type Envelope struct {
	Kind      string `json:"kind"`
	Username  string `json:"username"`
	Timestamp string `json:"timestamp,omitempty"`
	RecordID  *int64 `json:"record_id,omitempty"`

	// Creation payload.
	Steps      *int64   `json:"steps,omitempty"`
	SleepHours *float64 `json:"sleep_hours,omitempty"`
	Weight     *float64 `json:"weight,omitempty"`
	HeartRate  *int     `json:"heart_rate,omitempty"`

	// Update payload.
	UpdatedFields map[string]any `json:"updated_fields,omitempty"`
	OldData       map[string]any `json:"old_data,omitempty"`

	// Delete payload.
	DeletedRecord map[string]any `json:"deleted_record,omitempty"`
}

// Decode converts an envelope into a RecordEvent. The event date comes from
// the timestamp; a creation without a parsable timestamp degrades to now's
// date (a documented imprecision), while updates and deletes without one
// return ErrMissingTimestamp.
func Decode(env Envelope, now time.Time) (models.RecordEvent, error) {
	if env.Username == "" {
		return models.RecordEvent{}, fmt.Errorf("event has no username")
	}

	kind := models.EventKind(env.Kind)
	date, ok := parseEventDate(env.Timestamp)

	event := models.RecordEvent{
		Kind:     kind,
		Username: env.Username,
		Date:     date,
	}

	switch kind {
	case models.KindCreated:
		if !ok {
			event.Date = models.NormalizeDate(now)
		}
		created := &models.CreatedFields{}
		if env.Steps != nil {
			created.Steps = *env.Steps
		}
		if env.SleepHours != nil {
			created.SleepHours = *env.SleepHours
		}
		if env.Weight != nil {
			created.Weight = *env.Weight
		}
		created.HeartRate = env.HeartRate
		event.Created = created

	case models.KindUpdated:
		if !ok {
			return models.RecordEvent{}, ErrMissingTimestamp
		}
		event.Updated = &models.UpdatedFields{
			Changed:  numericFields(env.UpdatedFields),
			Previous: numericFields(env.OldData),
		}

	case models.KindDeleted:
		if !ok {
			return models.RecordEvent{}, ErrMissingTimestamp
		}
		event.Deleted = &models.DeletedFields{
			Removed: numericFields(env.DeletedRecord),
		}

	default:
		return models.RecordEvent{}, fmt.Errorf("unknown event kind %q", env.Kind)
	}

	return event, nil
}

func parseEventDate(timestamp string) (time.Time, bool) {
	if timestamp == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		// Record timestamps may omit the zone suffix.
		t, err = time.Parse("2006-01-02T15:04:05", timestamp)
		if err != nil {
			return time.Time{}, false
		}
	}
	return models.NormalizeDate(t), true
}

// numericFields keeps only the numeric entries of a decoded JSON object.
// Records carry non-metric fields (e.g. blood pressure strings) that the
// aggregates ignore.
func numericFields(raw map[string]any) map[string]float64 {
	fields := make(map[string]float64, len(raw))
	for k, v := range raw {
		if f, ok := v.(float64); ok {
			fields[k] = f
		}
	}
	return fields
}
