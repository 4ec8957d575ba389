// Package query is the filter/sort engine behind every snippet listing.
//
// Apply is a pure function over an already loaded collection: it never
// touches storage and never mutates its input, so the same Query over the
// same slice always produces the same view.
package query

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/sakif/snippetbox/internal/model"
)

// View selects which side of the trash partition a listing shows.
type View int

const (
	Active View = iota
	Trash
)

// SortKey orders the active view.
type SortKey string

const (
	SortByDate      SortKey = "date"
	SortByLanguage  SortKey = "language"
	SortByFavorites SortKey = "favorites"
)

// SortKeys lists the accepted sort keys in display order.
var SortKeys = []SortKey{SortByDate, SortByLanguage, SortByFavorites}

// SortKeyList joins SortKeys for help and error text.
func SortKeyList() string {
	names := make([]string, len(SortKeys))
	for i, k := range SortKeys {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

// ParseSortKey accepts "date", "language" or "favorites". An empty string
// means date.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return SortByDate, nil
	case SortByDate, SortByLanguage, SortByFavorites:
		return k, nil
	default:
		return "", fmt.Errorf("query: unknown sort key %q (want one of %s)", s, SortKeyList())
	}
}

// Query describes one listing. Empty Search, Tag and Language apply no
// filter. In the Trash view everything but View is ignored.
type Query struct {
	View     View
	Search   string
	Tag      string
	Language string
	SortBy   SortKey
}

// Filtered reports whether the query narrows the active view at all.
func (q Query) Filtered() bool {
	return q.Search != "" || q.Tag != "" || q.Language != ""
}

// Apply returns the snippets q selects, in display order. The result is a new
// slice; snippets is left untouched.
//
// Steps, in order:
//  1. keep one side of the trash partition (the Trash view stops here);
//  2. Search: case-insensitive substring of title, description or code;
//  3. Tag: exact tag membership;
//  4. Language: exact match;
//  5. stable sort by SortBy.
func Apply(snippets []model.Snippet, q Query) []model.Snippet {
	out := make([]model.Snippet, 0, len(snippets))

	if q.View == Trash {
		for _, s := range snippets {
			if !s.Active() {
				out = append(out, s)
			}
		}
		return out
	}

	needle := strings.ToLower(q.Search)
	for _, s := range snippets {
		if !s.Active() {
			continue
		}
		if needle != "" && !matchesSearch(&s, needle) {
			continue
		}
		if q.Tag != "" && !s.HasTag(q.Tag) {
			continue
		}
		if q.Language != "" && s.Language != q.Language {
			continue
		}
		out = append(out, s)
	}

	sortSnippets(out, q.SortBy)
	return out
}

func matchesSearch(s *model.Snippet, needle string) bool {
	return strings.Contains(strings.ToLower(s.Title), needle) ||
		strings.Contains(strings.ToLower(s.Description), needle) ||
		strings.Contains(strings.ToLower(s.Code), needle)
}

func sortSnippets(snippets []model.Snippet, key SortKey) {
	switch key {
	case SortByDate, "":
		slices.SortStableFunc(snippets, func(a, b model.Snippet) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortByLanguage:
		// A Collator is not safe for concurrent use; build one per sort.
		c := collate.New(language.Und)
		slices.SortStableFunc(snippets, func(a, b model.Snippet) int {
			return c.CompareString(a.Language, b.Language)
		})
	case SortByFavorites:
		slices.SortStableFunc(snippets, func(a, b model.Snippet) int {
			switch {
			case a.IsFavorite == b.IsFavorite:
				return 0
			case a.IsFavorite:
				return -1
			default:
				return 1
			}
		})
	}
}
