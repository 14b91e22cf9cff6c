package domain

import "time"

// Visibility is the audience of a status.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityUnlisted Visibility = "unlisted"
	VisibilityPrivate  Visibility = "private"
	VisibilityDirect   Visibility = "direct"
)

// VisibilityFromInt maps the relational store's visibility enum to its name.
func VisibilityFromInt(v int) Visibility {
	switch v {
	case 0:
		return VisibilityPublic
	case 1:
		return VisibilityUnlisted
	case 2:
		return VisibilityPrivate
	case 3:
		return VisibilityDirect
	default:
		return VisibilityPrivate
	}
}

// Status represents one post as the search layer sees it.
//
// It mirrors the search index document, not the full relational row:
// only the fields the query language can filter on and the fields the
// visibility post-filter needs are carried.
type Status struct {
	// ID is a monotonic (snowflake) identifier: higher = more recent.
	ID int64

	AccountID int64

	// AccountDomain is empty for statuses authored on the local instance.
	AccountDomain string

	Text string

	// Tags holds the hashtag names without the leading '#'.
	Tags []string

	Language   string
	Visibility Visibility
	Sensitive  bool

	// IsReply is true when the status answers another status.
	IsReply bool

	HasMedia bool
	HasImage bool
	HasVideo bool
	HasPoll  bool
	HasLink  bool
	HasEmbed bool

	CreatedAt time.Time

	FavouritesCount int64
	ReblogsCount    int64
	RepliesCount    int64
}

// Searchable reports whether the status belongs in the search index.
// Only public and unlisted statuses are indexed.
func (s *Status) Searchable() bool {
	return s.Visibility == VisibilityPublic || s.Visibility == VisibilityUnlisted
}
