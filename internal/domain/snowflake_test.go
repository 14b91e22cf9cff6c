package domain

import (
	"testing"
	"time"
)

func TestSnowflakeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		when time.Time
	}{
		{
			name: "epoch",
			when: time.UnixMilli(0).UTC(),
		},
		{
			name: "recent timestamp",
			when: time.Date(2024, 1, 1, 12, 30, 45, 0, time.UTC),
		},
		{
			name: "millisecond precision",
			when: time.UnixMilli(1700000000123).UTC(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := SnowflakeFromTime(tt.when)
			got := SnowflakeToTime(id)
			if !got.Equal(tt.when) {
				t.Errorf("SnowflakeToTime(SnowflakeFromTime(%v)) = %v", tt.when, got)
			}
		})
	}
}

func TestSnowflakeOrderingFollowsTime(t *testing.T) {
	earlier := SnowflakeFromTime(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	later := SnowflakeFromTime(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))

	if earlier >= later {
		t.Errorf("expected earlier id %d < later id %d", earlier, later)
	}
}

func TestSnowflakeSequenceBitsIgnored(t *testing.T) {
	base := SnowflakeFromTime(time.UnixMilli(1700000000000).UTC())

	// Identifiers minted in the same millisecond differ only in the
	// sequence bits and must decode to the same instant.
	for _, seq := range []int64{0, 1, 0xFFFF} {
		got := SnowflakeToTime(base | seq)
		if got.UnixMilli() != 1700000000000 {
			t.Errorf("SnowflakeToTime(base|%d) = %v, want ms 1700000000000", seq, got)
		}
	}
}
