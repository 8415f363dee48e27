package main

import (
	"sort"
	"strings"
)

// Field identifies a book attribute a filter or a distinct-value
// enumeration can target. Using a closed set of constants keeps
// client-supplied keys from ever reaching the storage layer.
type Field string

const (
	FieldTitle    Field = "title"
	FieldAuthor   Field = "author"
	FieldCategory Field = "category"
)

// MatchKind tells how a filter value is compared to a book field.
type MatchKind int

const (
	// MatchExact requires strict equality with the stored value.
	MatchExact MatchKind = iota
	// MatchSubstring requires the stored value to contain the filter
	// value, compared case-insensitively.
	MatchSubstring
)

// FieldFilter is one criterion of a filter specification.
type FieldFilter struct {
	Field Field
	Kind  MatchKind
	Value string
}

// FilterSpec is the set of criteria narrowing a catalog listing.
// Criteria compose by logical AND. An empty specification matches
// every book.
type FilterSpec []FieldFilter

// SortOrder is the direction applied over the stable ordering key.
type SortOrder int

const (
	SortDescending SortOrder = iota
	SortAscending
)

// ParseSortOrder maps the `sort` query parameter to a SortOrder.
// Anything but `asc` falls back to descending, the storefront default.
func ParseSortOrder(s string) SortOrder {
	if s == "asc" {
		return SortAscending
	}
	return SortDescending
}

// BuildFilterSpec assembles a filter specification from the optional
// listing criteria. Empty values impose no constraint.
func BuildFilterSpec(title, category, author string) FilterSpec {
	var spec FilterSpec
	if title != "" {
		spec = append(spec, FieldFilter{Field: FieldTitle, Kind: MatchSubstring, Value: title})
	}
	if category != "" {
		spec = append(spec, FieldFilter{Field: FieldCategory, Kind: MatchExact, Value: category})
	}
	if author != "" {
		spec = append(spec, FieldFilter{Field: FieldAuthor, Kind: MatchExact, Value: author})
	}
	return spec
}

// FieldValue returns the book attribute targeted by a Field.
func (b Book) FieldValue(f Field) string {
	switch f {
	case FieldTitle:
		return b.Title
	case FieldAuthor:
		return b.Author
	case FieldCategory:
		return b.Category
	}
	return ""
}

// Match reports whether a book satisfies every criterion of the spec.
func (fs FilterSpec) Match(b Book) bool {
	for _, f := range fs {
		value := b.FieldValue(f.Field)
		switch f.Kind {
		case MatchExact:
			if value != f.Value {
				return false
			}
		case MatchSubstring:
			if !strings.Contains(strings.ToLower(value), strings.ToLower(f.Value)) {
				return false
			}
		}
	}
	return true
}

// SortBooks orders books in place over the stable ordering key: the
// creation timestamp with the id as tiebreak. The stored UTC timestamps
// compare correctly as strings, so insertion order is preserved.
func SortBooks(books []Book, order SortOrder) {
	sort.SliceStable(books, func(i, j int) bool {
		bi, bj := books[i], books[j]
		if order == SortAscending {
			if bi.CreatedAt != bj.CreatedAt {
				return bi.CreatedAt < bj.CreatedAt
			}
			return bi.ID < bj.ID
		}
		if bi.CreatedAt != bj.CreatedAt {
			return bi.CreatedAt > bj.CreatedAt
		}
		return bi.ID > bj.ID
	})
}

// SelectPage interprets a filter specification over a scanned
// collection: it keeps the matching books, orders them, then cuts the
// skip-based window. A window past the end yields an empty slice.
func SelectPage(books []Book, spec FilterSpec, order SortOrder, skip, limit int) []Book {
	matched := []Book{}
	for _, b := range books {
		if spec.Match(b) {
			matched = append(matched, b)
		}
	}
	SortBooks(matched, order)

	if skip < 0 {
		skip = 0
	}
	if skip >= len(matched) {
		return []Book{}
	}
	end := skip + limit
	if limit <= 0 || end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end]
}

// CountMatching returns the number of books satisfying the spec.
func CountMatching(books []Book, spec FilterSpec) int {
	var n int
	for _, b := range books {
		if spec.Match(b) {
			n++
		}
	}
	return n
}

// DistinctValues enumerates the unique values of a field across the
// collection, sorted for stable output. Unbounded on purpose: the
// catalog is assumed small enough for filter dropdowns.
func DistinctValues(books []Book, field Field) []string {
	seen := make(map[string]struct{}, len(books))
	values := []string{}
	for _, b := range books {
		v := b.FieldValue(field)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// TotalPages computes the page count for a fixed page size.
func TotalPages(total, pageSize int) int {
	if total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
