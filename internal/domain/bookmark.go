package domain

import "time"

// Bookmark records that an account saved a status.
//
// ID is assigned at creation time and is strictly increasing, so it
// doubles as the sort score of the bookmark feed cache. For a given
// account a status is bookmarked at most once; removing and re-adding
// the same status produces a new ID.
type Bookmark struct {
	ID        int64
	AccountID int64
	StatusID  int64
	CreatedAt time.Time
}
