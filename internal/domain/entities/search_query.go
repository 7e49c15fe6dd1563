package entities

import (
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// SortMode enumerates the supported result orderings.
type SortMode string

const (
	SortRelevance   SortMode = "relevance"
	SortPopularity  SortMode = "popularity"
	SortName        SortMode = "name"
	SortDistance    SortMode = "distance"
	SortEstablished SortMode = "established"
	SortRating      SortMode = "rating"
)

// Default pagination for a freshly constructed query.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// SearchQuery is the immutable-by-convention description of one artist search.
// Construct through NewSearchQuery so absent fields get their defaults.
type SearchQuery struct {
	Text       string   `json:"text,omitempty"`
	Styles     []string `json:"styles,omitempty"`
	City       string   `json:"city,omitempty"`
	Postcode   string   `json:"postcode,omitempty"`
	Difficulty []string `json:"difficulty,omitempty"`
	SortBy     SortMode `json:"sort_by,omitempty"`
	Page       int      `json:"page,omitempty"`
	PageSize   int      `json:"page_size,omitempty"`
}

// NewSearchQuery fills the defaults for any zero-valued field of a partial
// query literal: sort falls back to relevance, page to 1, page size to 20, and
// an unknown sort mode is normalized rather than rejected.
func NewSearchQuery(q SearchQuery) SearchQuery {
	if !validSortMode(q.SortBy) {
		q.SortBy = SortRelevance
	}
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	return q
}

// HasFilters reports whether the query deviates from the default empty search
// in any searchable dimension. Pagination alone does not count as a filter.
func (q SearchQuery) HasFilters() bool {
	return q.Text != "" ||
		len(q.Styles) > 0 ||
		q.City != "" ||
		q.Postcode != "" ||
		len(q.Difficulty) > 0 ||
		(q.SortBy != "" && q.SortBy != SortRelevance)
}

// CacheKey returns a stable serialization of the query. Tag sets are sorted
// first so two semantically equal queries share a key regardless of the order
// filters were applied in.
func (q SearchQuery) CacheKey() string {
	q = NewSearchQuery(q)

	var b strings.Builder
	b.WriteString("q=")
	b.WriteString(q.Text)
	b.WriteString("|styles=")
	b.WriteString(strings.Join(sortedCopy(q.Styles), ","))
	b.WriteString("|city=")
	b.WriteString(q.City)
	b.WriteString("|postcode=")
	b.WriteString(q.Postcode)
	b.WriteString("|difficulty=")
	b.WriteString(strings.Join(sortedCopy(q.Difficulty), ","))
	b.WriteString("|sort=")
	b.WriteString(string(q.SortBy))
	b.WriteString("|page=")
	b.WriteString(strconv.Itoa(q.Page))
	b.WriteString("|size=")
	b.WriteString(strconv.Itoa(q.PageSize))
	return b.String()
}

// Params converts the query to its flat address-bar form. Fields equal to
// their default are omitted to keep URLs minimal.
func (q SearchQuery) Params() url.Values {
	q = NewSearchQuery(q)
	v := url.Values{}

	if q.Text != "" {
		v.Set("query", q.Text)
	}
	if len(q.Styles) > 0 {
		v.Set("styles", strings.Join(q.Styles, ","))
	}
	if q.City != "" {
		v.Set("city", q.City)
	}
	if q.Postcode != "" {
		v.Set("postcode", q.Postcode)
	}
	if len(q.Difficulty) > 0 {
		v.Set("difficulty", strings.Join(q.Difficulty, ","))
	}
	if q.SortBy != SortRelevance {
		v.Set("sortBy", string(q.SortBy))
	}
	if q.Page != DefaultPage {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize != DefaultPageSize {
		v.Set("limit", strconv.Itoa(q.PageSize))
	}
	return v
}

// QueryFromParams is the left inverse of Params on the non-default subset.
// Malformed values normalize to their defaults rather than failing.
func QueryFromParams(v url.Values) SearchQuery {
	return NewSearchQuery(SearchQuery{
		Text:       v.Get("query"),
		Styles:     splitList(v.Get("styles")),
		City:       v.Get("city"),
		Postcode:   v.Get("postcode"),
		Difficulty: splitList(v.Get("difficulty")),
		SortBy:     SortMode(v.Get("sortBy")),
		Page:       parsePositiveInt(v.Get("page")),
		PageSize:   parsePositiveInt(v.Get("limit")),
	})
}

func validSortMode(m SortMode) bool {
	switch m {
	case SortRelevance, SortPopularity, SortName, SortDistance, SortEstablished, SortRating:
		return true
	}
	return false
}

func sortedCopy(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	sort.Strings(out)
	return out
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parsePositiveInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0
	}
	return n
}
