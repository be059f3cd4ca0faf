package activity

import (
	"time"

	"github.com/pulseboard/pulseboard/internal/model"
)

// Raw source timestamps come in several shapes; some are timezone-naive.
// Naive values are interpreted as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp parses a raw source timestamp. The zero time and false are
// returned when the value is empty or unparseable; callers must degrade, not
// fail.
func ParseTimestamp(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// normalize returns the activity's sort instant and its explicit-UTC ISO-8601
// rendering. Daily-analysis records without a timestamp sort on their target
// date so digests interleave with user activity on a calendar axis.
// Unparseable values keep their raw text and sort as the oldest possible
// instant.
func normalize(rec *model.RawActivity) (time.Time, string) {
	raw := rec.Timestamp
	if raw == "" && rec.TargetDate != "" {
		raw = rec.TargetDate
	}
	t, ok := ParseTimestamp(raw)
	if !ok && rec.OccurredAt != nil {
		t, ok = rec.OccurredAt.UTC(), true
	}
	if !ok {
		return time.Time{}, raw
	}
	return t, t.Format(time.RFC3339)
}
