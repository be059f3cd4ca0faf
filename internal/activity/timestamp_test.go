package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pulseboard/pulseboard/internal/model"
)

func TestParseTimestamp(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"2024-03-01T12:00:00Z", "2024-03-01T12:00:00Z", true},
		{"2024-03-01T12:00:00.123456789Z", "2024-03-01T12:00:00Z", true},
		{"2024-03-01T07:00:00-05:00", "2024-03-01T12:00:00Z", true},
		// Naive values are read as UTC.
		{"2024-03-01T12:00:00", "2024-03-01T12:00:00Z", true},
		{"2024-03-01 12:00:00", "2024-03-01T12:00:00Z", true},
		{"2024-03-01", "2024-03-01T00:00:00Z", true},
		{"", "", false},
		{"yesterday-ish", "", false},
	}
	for _, c := range cases {
		got, ok := ParseTimestamp(c.in)
		require.Equal(t, c.ok, ok, "input %q", c.in)
		if ok {
			require.Equal(t, c.want, got.Format(time.RFC3339), "input %q", c.in)
		}
	}
}

func TestNormalize(t *testing.T) {
	at, ts := normalize(&model.RawActivity{Timestamp: "2024-03-01T07:00:00-05:00"})
	require.Equal(t, "2024-03-01T12:00:00Z", ts)
	require.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), at)

	// Daily digests carry only a target date.
	at, ts = normalize(&model.RawActivity{TargetDate: "2024-03-01"})
	require.Equal(t, "2024-03-01T00:00:00Z", ts)
	require.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), at)

	// Unparseable text sorts oldest and keeps its raw form.
	at, ts = normalize(&model.RawActivity{Timestamp: "garbled"})
	require.True(t, at.IsZero())
	require.Equal(t, "garbled", ts)

	// A stored parse result backstops a missing raw string.
	occurred := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)
	at, ts = normalize(&model.RawActivity{OccurredAt: &occurred})
	require.Equal(t, occurred, at)
	require.Equal(t, "2024-03-02T09:30:00Z", ts)
}
