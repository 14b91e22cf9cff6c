package query

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/paon-social/searchd/internal/domain"
	"github.com/paon-social/searchd/internal/locale"
	"github.com/paon-social/searchd/internal/logger"
)

// ErrTransform is wrapped by every transformer error. Like parse errors,
// transform errors are never user-facing: the caller falls back to a
// plain text search.
var ErrTransform = errors.New("query transform error")

// largeBookmarkSetThreshold is the member count above which an
// in:bookmark filter is still emitted in full but logged as a filter
// size risk.
const largeBookmarkSetThreshold = 10_000

const secondsPerDay = 86_400

// Descriptor is the backend-ready form of a query: free text terms, a
// conjunction of filter fragments, and a fixed sort.
type Descriptor struct {
	Query  string
	Filter string
	Sort   []string
}

// DefaultSort orders results by descending creation time. The query
// language exposes no user-controlled sort.
func DefaultSort() []string {
	return []string{"created_at_timestamp:desc"}
}

// DefaultVisibilityFilter is emitted when no in: directive narrows the
// search scope.
const DefaultVisibilityFilter = `(visibility = "public" OR visibility = "unlisted")`

// AccountResolver resolves a username (and optional remote domain) to an
// account id. An empty domain means a local account.
type AccountResolver interface {
	ResolveAccountID(ctx context.Context, username, domain string) (int64, error)
}

// TimezoneResolver looks up the configured timezone of an account.
type TimezoneResolver interface {
	Timezone(ctx context.Context, accountID int64) (*time.Location, error)
}

// BookmarkReader reads the ordered bookmark feed of an account.
type BookmarkReader interface {
	GetAllStatusIDs(ctx context.Context, accountID int64) ([]int64, error)
}

// Transformer turns a parsed clause list plus the viewer context into a
// Descriptor.
type Transformer struct {
	accounts    AccountResolver
	timezones   TimezoneResolver
	locales     *locale.Table
	bookmarks   BookmarkReader
	localDomain string
	logger      logger.Logger
	now         func() time.Time
}

// NewTransformer builds a Transformer with its collaborators.
func NewTransformer(
	accounts AccountResolver,
	timezones TimezoneResolver,
	locales *locale.Table,
	bookmarks BookmarkReader,
	localDomain string,
	log logger.Logger,
) *Transformer {
	return &Transformer{
		accounts:    accounts,
		timezones:   timezones,
		locales:     locales,
		bookmarks:   bookmarks,
		localDomain: localDomain,
		logger:      log,
		now:         time.Now,
	}
}

// hasFields maps has:/is: values to the boolean index fields they filter.
var hasFields = map[string]string{
	"media": "has_media",
	"image": "has_image",
	"video": "has_video",
	"poll":  "has_poll",
	"link":  "has_link",
	"embed": "has_embed",
}

// Apply walks the clauses left to right, accumulating free text terms,
// filter fragments, and flag directives, then resolves the in: flag into
// its final filter fragment. The viewer may be nil.
func (tr *Transformer) Apply(ctx context.Context, clauses []Clause, viewer *domain.Account) (*Descriptor, error) {
	var (
		terms   []string
		filters []string
		flags   = map[string]string{}
	)

	for _, c := range clauses {
		switch clause := c.(type) {
		case TermClause:
			if clause.Operator == OpMustNot {
				// The backend's ranked search has no structural
				// negation; prefix the term with '-' and let it
				// de-rank matches.
				terms = append(terms, "-"+clause.QueryText())
			} else {
				terms = append(terms, clause.QueryText())
			}
		case PhraseClause:
			if clause.Operator == OpMustNot {
				terms = append(terms, "-"+clause.QueryText())
			} else {
				terms = append(terms, clause.QueryText())
			}
		case PrefixClause:
			if clause.Prefix == "in" {
				// in: is a mode flag, resolved after the pass.
				// Repeats overwrite: last value wins.
				flags["in"] = clause.Value
				continue
			}
			fragment, err := tr.prefixFilter(ctx, clause, viewer)
			if err != nil {
				return nil, err
			}
			filters = append(filters, fragment)
		}
	}

	scope, err := tr.scopeFilter(ctx, flags["in"], viewer)
	if err != nil {
		return nil, err
	}
	filters = append(filters, scope)

	return &Descriptor{
		Query:  strings.TrimSpace(strings.Join(terms, " ")),
		Filter: strings.Join(filters, " AND "),
		Sort:   DefaultSort(),
	}, nil
}

// prefixFilter renders one non-flag prefix clause as a filter fragment.
func (tr *Transformer) prefixFilter(ctx context.Context, c PrefixClause, viewer *domain.Account) (string, error) {
	switch c.Prefix {
	case "has":
		field, ok := hasFields[c.Value]
		if !ok {
			return "", fmt.Errorf("%w: unknown has: value %q", ErrTransform, c.Value)
		}
		return boolFilter(field, c.Negated), nil

	case "is":
		switch c.Value {
		case "reply":
			return boolFilter("is_reply", c.Negated), nil
		case "sensitive":
			return boolFilter("sensitive", c.Negated), nil
		}
		// is: accepts the has: vocabulary for compatibility.
		field, ok := hasFields[c.Value]
		if !ok {
			return "", fmt.Errorf("%w: unknown is: value %q", ErrTransform, c.Value)
		}
		return boolFilter(field, c.Negated), nil

	case "language":
		code := tr.locales.Normalize(c.Value)
		if c.Negated {
			return fmt.Sprintf("language != '%s'", code), nil
		}
		return fmt.Sprintf("language = '%s'", code), nil

	case "from":
		id := tr.accountID(ctx, c.Value, viewer)
		if c.Negated {
			return fmt.Sprintf("account_id != %d", id), nil
		}
		return fmt.Sprintf("account_id = %d", id), nil

	case "before":
		return fmt.Sprintf("created_at_timestamp < %d", tr.dayStart(ctx, c.Value, viewer)), nil

	case "after":
		return fmt.Sprintf("created_at_timestamp >= %d", tr.dayStart(ctx, c.Value, viewer)), nil

	case "during":
		start := tr.dayStart(ctx, c.Value, viewer)
		return fmt.Sprintf("created_at_timestamp >= %d AND created_at_timestamp < %d", start, start+secondsPerDay), nil
	}

	return "", fmt.Errorf("%w: unknown prefix %q", ErrTransform, c.Prefix)
}

// scopeFilter resolves the in: flag into the final filter fragment.
func (tr *Transformer) scopeFilter(ctx context.Context, mode string, viewer *domain.Account) (string, error) {
	switch mode {
	case "library":
		return fmt.Sprintf("account_id = %d", viewerID(viewer)), nil

	case "public":
		return `visibility = "public"`, nil

	case "bookmark":
		if viewer == nil {
			return fmt.Sprintf("id = %d", domain.SentinelAccountID), nil
		}
		ids, err := tr.bookmarks.GetAllStatusIDs(ctx, viewer.ID)
		if err != nil {
			return "", fmt.Errorf("%w: reading bookmark feed: %w", ErrTransform, err)
		}
		if len(ids) == 0 {
			return fmt.Sprintf("id = %d", domain.SentinelAccountID), nil
		}
		if len(ids) > largeBookmarkSetThreshold {
			tr.logger.Warn("large bookmark set in filter",
				logger.Int64("account_id", viewer.ID),
				logger.Int("size", len(ids)))
		}
		return "id IN [" + joinIDs(ids) + "]", nil

	default:
		return DefaultVisibilityFilter, nil
	}
}

// accountID resolves a from: value to an account id. Resolution failures
// are not errors: they yield the sentinel id, which matches nothing.
func (tr *Transformer) accountID(ctx context.Context, value string, viewer *domain.Account) int64 {
	if value == "me" {
		return viewerID(viewer)
	}

	username, accountDomain, _ := strings.Cut(strings.TrimPrefix(value, "@"), "@")
	if strings.EqualFold(accountDomain, tr.localDomain) {
		accountDomain = ""
	}

	id, err := tr.accounts.ResolveAccountID(ctx, username, accountDomain)
	if err != nil {
		return domain.SentinelAccountID
	}
	return id
}

// dayStart parses a calendar date in the viewer's timezone and returns
// the Unix timestamp of its first instant. before:, after: and during:
// all share this instant; only the comparison differs. Malformed dates
// resolve to the current time rather than erroring.
func (tr *Transformer) dayStart(ctx context.Context, value string, viewer *domain.Account) int64 {
	loc := time.UTC
	if viewer != nil {
		if l, err := tr.timezones.Timezone(ctx, viewer.ID); err == nil && l != nil {
			loc = l
		}
	}

	for _, layout := range []string{"2006-01-02", "2006/01/02", "2006.01.02", "Jan 2 2006", "January 2, 2006"} {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			year, month, day := parsed.Date()
			return time.Date(year, month, day, 0, 0, 0, 0, loc).Unix()
		}
	}

	return tr.now().Unix()
}

func viewerID(viewer *domain.Account) int64 {
	if viewer == nil {
		return domain.SentinelAccountID
	}
	return viewer.ID
}

func boolFilter(field string, negated bool) string {
	if negated {
		return field + " = false"
	}
	return field + " = true"
}

func joinIDs(ids []int64) string {
	var b strings.Builder
	for i, id := range ids {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatInt(id, 10))
	}
	return b.String()
}
