package query

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/sakif/snippetbox/internal/model"
)

// Outcome explains a listing so the caller can pick the right empty state.
type Outcome int

const (
	// OutcomeResults means the listing has at least one snippet.
	OutcomeResults Outcome = iota
	// OutcomeNoData means there are no active snippets at all.
	OutcomeNoData
	// OutcomeNoMatches means active snippets exist but the filters exclude
	// every one of them.
	OutcomeNoMatches
	// OutcomeEmptyTrash means the trash view has nothing in it.
	OutcomeEmptyTrash
)

// Describe classifies the result of Apply(all, q).
func Describe(all []model.Snippet, q Query, result []model.Snippet) Outcome {
	if len(result) > 0 {
		return OutcomeResults
	}
	if q.View == Trash {
		return OutcomeEmptyTrash
	}
	for i := range all {
		if all[i].Active() {
			return OutcomeNoMatches
		}
	}
	return OutcomeNoData
}

// Tags returns the distinct tags of active snippets, sorted.
func Tags(all []model.Snippet) []string {
	seen := make(map[string]struct{})
	for i := range all {
		if !all[i].Active() {
			continue
		}
		for _, t := range all[i].Tags {
			seen[t] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// Languages returns the distinct languages of active snippets, sorted.
func Languages(all []model.Snippet) []string {
	seen := make(map[string]struct{})
	for i := range all {
		if all[i].Active() && all[i].Language != "" {
			seen[all[i].Language] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// SuggestTags offers existing tags (from every snippet, trashed included)
// containing input case-insensitively, minus the ones already chosen.
// Suggestions keep first-seen order.
func SuggestTags(all []model.Snippet, input string, chosen []string) []string {
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for i := range all {
		for _, t := range all[i].Tags {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			if strings.Contains(strings.ToLower(t), input) && !slices.Contains(chosen, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

// Span is a byte range [Start, End) of a search match.
type Span struct {
	Start, End int
}

// Matches finds the non-overlapping case-insensitive occurrences of search in
// text. Runes are compared lower-cased, the same folding the search filter
// uses, so every snippet the filter keeps has its matches marked.
func Matches(text, search string) []Span {
	if search == "" {
		return nil
	}
	needle := []rune(strings.ToLower(search))
	var spans []Span
	for i := 0; i < len(text); {
		if end, ok := matchAt(text, i, needle); ok {
			spans = append(spans, Span{Start: i, End: end})
			i = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	return spans
}

// matchAt reports whether needle starts at byte i of text and where the
// match ends.
func matchAt(text string, i int, needle []rune) (int, bool) {
	for _, want := range needle {
		if i >= len(text) {
			return 0, false
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.ToLower(r) != want {
			return 0, false
		}
		i += size
	}
	return i, true
}

// Highlight rewrites every match of search in text with mark(match).
func Highlight(text, search string, mark func(string) string) string {
	spans := Matches(text, search)
	if len(spans) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, sp := range spans {
		b.WriteString(text[last:sp.Start])
		b.WriteString(mark(text[sp.Start:sp.End]))
		last = sp.End
	}
	b.WriteString(text[last:])
	return b.String()
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
