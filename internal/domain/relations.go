package domain

// Relations holds the viewer's relationship state toward a set of
// accounts and domains, preloaded in one round trip so the post-filter
// never goes back to the store per status.
type Relations struct {
	Blocking       map[int64]bool  // viewer blocks the author
	BlockedBy      map[int64]bool  // author blocks the viewer
	Muting         map[int64]bool  // viewer mutes the author
	DomainBlocking map[string]bool // viewer blocks the author's domain
}

// EmptyRelations is used when there is no viewer: nothing is filtered
// beyond the index's own visibility rules.
func EmptyRelations() Relations {
	return Relations{
		Blocking:       map[int64]bool{},
		BlockedBy:      map[int64]bool{},
		Muting:         map[int64]bool{},
		DomainBlocking: map[string]bool{},
	}
}

// StatusFilter decides whether a returned status is hidden from the viewer.
type StatusFilter struct {
	ViewerID  int64
	Relations Relations
}

// Filtered reports whether the status must be dropped from the result set.
// A viewer always sees their own statuses.
func (f *StatusFilter) Filtered(s *Status) bool {
	if s.AccountID == f.ViewerID {
		return false
	}
	if f.Relations.Blocking[s.AccountID] || f.Relations.BlockedBy[s.AccountID] || f.Relations.Muting[s.AccountID] {
		return true
	}
	if s.AccountDomain != "" && f.Relations.DomainBlocking[s.AccountDomain] {
		return true
	}
	return false
}
