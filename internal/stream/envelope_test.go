package stream

import (
	"errors"
	"testing"
	"time"

	"github.com/vitalflow/analytics/internal/models"
)

func int64Ptr(v int64) *int64       { return &v }
func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }

var testNow = time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)

func TestDecodeCreated(t *testing.T) {
	event, err := Decode(Envelope{
		Kind:       "created",
		Username:   "alice",
		Timestamp:  "2025-03-09T22:15:00Z",
		Steps:      int64Ptr(12000),
		SleepHours: float64Ptr(5),
		Weight:     float64Ptr(70.5),
		HeartRate:  intPtr(105),
	}, testNow)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if event.Kind != models.KindCreated {
		t.Errorf("Kind = %s, want created", event.Kind)
	}
	if want := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC); !event.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", event.Date, want)
	}
	if event.Created == nil {
		t.Fatal("Created payload missing")
	}
	if event.Created.Steps != 12000 || event.Created.SleepHours != 5 || event.Created.Weight != 70.5 {
		t.Errorf("payload = %+v", event.Created)
	}
	if event.Created.HeartRate == nil || *event.Created.HeartRate != 105 {
		t.Errorf("HeartRate = %v, want 105", event.Created.HeartRate)
	}
}

func TestDecodeCreatedTimestampFallsBackToNow(t *testing.T) {
	for _, ts := range []string{"", "not-a-time"} {
		event, err := Decode(Envelope{Kind: "created", Username: "alice", Timestamp: ts}, testNow)
		if err != nil {
			t.Fatalf("Decode(%q) failed: %v", ts, err)
		}
		if want := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC); !event.Date.Equal(want) {
			t.Errorf("Decode(%q).Date = %v, want today", ts, event.Date)
		}
	}
}

func TestDecodeAcceptsZonelessTimestamp(t *testing.T) {
	event, err := Decode(Envelope{Kind: "created", Username: "alice", Timestamp: "2025-03-09T08:00:00"}, testNow)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if want := time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC); !event.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", event.Date, want)
	}
}

func TestDecodeUpdated(t *testing.T) {
	event, err := Decode(Envelope{
		Kind:      "updated",
		Username:  "alice",
		Timestamp: "2025-03-09T22:15:00Z",
		UpdatedFields: map[string]any{
			"steps":          float64(800),
			"blood_pressure": "120/80",
		},
		OldData: map[string]any{"steps": float64(500)},
	}, testNow)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if event.Updated == nil {
		t.Fatal("Updated payload missing")
	}
	if event.Updated.Changed["steps"] != 800 || event.Updated.Previous["steps"] != 500 {
		t.Errorf("payload = %+v", event.Updated)
	}
	if _, ok := event.Updated.Changed["blood_pressure"]; ok {
		t.Error("non-numeric field survived decoding")
	}
}

func TestDecodeUpdateDeleteRequireTimestamp(t *testing.T) {
	for _, kind := range []string{"updated", "deleted"} {
		for _, ts := range []string{"", "garbage"} {
			_, err := Decode(Envelope{Kind: kind, Username: "alice", Timestamp: ts}, testNow)
			if !errors.Is(err, ErrMissingTimestamp) {
				t.Errorf("Decode(%s, %q) err = %v, want ErrMissingTimestamp", kind, ts, err)
			}
		}
	}
}

func TestDecodeDeleted(t *testing.T) {
	event, err := Decode(Envelope{
		Kind:          "deleted",
		Username:      "alice",
		Timestamp:     "2025-03-09T22:15:00Z",
		DeletedRecord: map[string]any{"steps": float64(7000), "sleep_hours": float64(8)},
	}, testNow)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if event.Deleted == nil {
		t.Fatal("Deleted payload missing")
	}
	if event.Deleted.Removed["steps"] != 7000 || event.Deleted.Removed["sleep_hours"] != 8 {
		t.Errorf("payload = %+v", event.Deleted)
	}
}

func TestDecodeRejectsUnknownKindAndMissingUsername(t *testing.T) {
	if _, err := Decode(Envelope{Kind: "archived", Username: "alice", Timestamp: "2025-03-09T22:15:00Z"}, testNow); err == nil {
		t.Error("unknown kind not rejected")
	}
	if _, err := Decode(Envelope{Kind: "created"}, testNow); err == nil {
		t.Error("missing username not rejected")
	}
}
