package timeutil

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTimeMarshalJSON(t *testing.T) {
	ts := NewTime(time.Date(2024, 1, 15, 10, 30, 0, 123456789, time.UTC))

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got := string(data); got != `"2024-01-15T10:30:00.123Z"` {
		t.Fatalf("expected millisecond precision, got %s", got)
	}
}

func TestTimeMarshalConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	ts := NewTime(time.Date(2024, 1, 15, 12, 30, 0, 0, loc))

	data, err := json.Marshal(ts)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if got := string(data); got != `"2024-01-15T10:30:00.000Z"` {
		t.Fatalf("expected UTC output, got %s", got)
	}
}

func TestTimeUnmarshalJSON(t *testing.T) {
	var ts Time
	if err := json.Unmarshal([]byte(`"2024-01-15T10:30:00.123Z"`), &ts); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	want := time.Date(2024, 1, 15, 10, 30, 0, 123000000, time.UTC)
	if !ts.Equal(want) {
		t.Fatalf("expected %v, got %v", want, ts.Time)
	}
}

func TestTimeUnmarshalNullPreservesValue(t *testing.T) {
	ts := Now()
	before := ts.Time
	if err := json.Unmarshal([]byte("null"), &ts); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !ts.Equal(before) {
		t.Fatal("expected null to preserve the existing value")
	}
}

func TestTimeUnmarshalRejectsGarbage(t *testing.T) {
	var ts Time
	if err := json.Unmarshal([]byte(`"not-a-time"`), &ts); err == nil {
		t.Fatal("expected an error")
	}
}
