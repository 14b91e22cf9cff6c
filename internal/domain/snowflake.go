package domain

import "time"

// Status and bookmark identifiers are snowflakes: the upper 48 bits are
// the creation time in milliseconds since the Unix epoch, the lower 16
// bits a per-millisecond sequence.

const snowflakeTimeShift = 16

// SnowflakeToTime extracts the creation time encoded in an identifier.
func SnowflakeToTime(id int64) time.Time {
	return time.UnixMilli(id >> snowflakeTimeShift).UTC()
}

// SnowflakeFromTime returns the smallest identifier that could have been
// assigned at t. Useful for turning id cursors into timestamp bounds and
// back.
func SnowflakeFromTime(t time.Time) int64 {
	return t.UnixMilli() << snowflakeTimeShift
}
