// Package tabular provides the stateless list-screen transformations shared
// by every admin table: free-text search, chip-style group filtering, column
// sort, and pagination. All functions are pure; every screen recomputes the
// full pipeline (filter -> group -> sort -> paginate) on each parameter
// change, which is acceptable at admin-UI list sizes.
package tabular

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Record is one table row: field name to scalar value. The engine is generic
// over any shape.
type Record = map[string]any

// Sort directions accepted by SortBy.
const (
	Ascending  = "asc"
	Descending = "desc"
)

// FilterByText keeps records where any candidate value contains searchText as
// a case-insensitive substring. Candidates come from the explicit keys list
// when given, otherwise from every value in the record. Empty or
// whitespace-only search text returns the input unchanged.
func FilterByText(records []Record, searchText string, keys []string) []Record {
	needle := strings.ToLower(strings.TrimSpace(searchText))
	if needle == "" {
		return records
	}

	var matched []Record
	for _, rec := range records {
		if recordMatches(rec, needle, keys) {
			matched = append(matched, rec)
		}
	}
	return matched
}

func recordMatches(rec Record, needle string, keys []string) bool {
	if len(keys) > 0 {
		for _, key := range keys {
			if value, ok := rec[key]; ok && containsFold(value, needle) {
				return true
			}
		}
		return false
	}
	for _, value := range rec {
		if containsFold(value, needle) {
			return true
		}
	}
	return false
}

func containsFold(value any, needle string) bool {
	if value == nil {
		return false
	}
	return strings.Contains(strings.ToLower(fmt.Sprint(value)), needle)
}

// FilterByGroups keeps records whose groupKey value is one of the selected
// group values. No selected values means no filter chip is active, i.e.
// "show all", not "show none".
func FilterByGroups(records []Record, selectedGroupValues []string, groupKey string) []Record {
	if len(selectedGroupValues) == 0 {
		return records
	}
	selected := make(map[string]bool, len(selectedGroupValues))
	for _, v := range selectedGroupValues {
		selected[v] = true
	}

	var matched []Record
	for _, rec := range records {
		if value, ok := rec[groupKey]; ok && value != nil && selected[fmt.Sprint(value)] {
			matched = append(matched, rec)
		}
	}
	return matched
}

// SortBy returns a new slice sorted by the given key. String values compare
// with locale-aware collation (English); everything else compares numerically.
// Direction "desc" reverses the order. Columns mixing strings and numbers are
// out of contract and sort in an unspecified order. The input is never
// mutated; an empty key returns it unchanged.
func SortBy(records []Record, key, direction string) []Record {
	return SortByCollator(records, key, direction, collate.New(language.English))
}

// SortByCollator is SortBy with an explicit collator for non-English locales.
func SortByCollator(records []Record, key, direction string, col *collate.Collator) []Record {
	if key == "" {
		return records
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)

	sort.SliceStable(sorted, func(i, j int) bool {
		cmp := compareValues(sorted[i][key], sorted[j][key], col)
		if direction == Descending {
			return cmp > 0
		}
		return cmp < 0
	})
	return sorted
}

func compareValues(a, b any, col *collate.Collator) int {
	sa, aIsString := a.(string)
	sb, bIsString := b.(string)
	if aIsString && bIsString {
		return col.CompareString(sa, sb)
	}

	fa, fb := toFloat(a), toFloat(b)
	switch {
	case fa < fb:
		return -1
	case fa > fb:
		return 1
	default:
		return 0
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint64:
		return float64(n)
	case bool:
		if n {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// Paginate slices out the 1-indexed page of the given size. Pages beyond the
// data and non-positive page numbers or sizes yield an empty result rather
// than an error.
func Paginate(records []Record, pageNumber, pageSize int) []Record {
	if pageNumber < 1 || pageSize < 1 {
		return nil
	}
	start := (pageNumber - 1) * pageSize
	if start >= len(records) {
		return nil
	}
	end := start + pageSize
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// Query bundles the parameters of one list-screen render.
type Query struct {
	Search     string
	SearchKeys []string
	Groups     []string
	GroupKey   string
	SortKey    string
	SortDir    string
	Page       int
	PageSize   int
}

// Apply runs the fixed pipeline: filter by text, filter by groups, sort,
// paginate. It returns the page plus the total record count after filtering
// but before pagination, which list screens need for their page controls.
func Apply(records []Record, q Query) (page []Record, total int) {
	filtered := FilterByText(records, q.Search, q.SearchKeys)
	filtered = FilterByGroups(filtered, q.Groups, q.GroupKey)
	filtered = SortBy(filtered, q.SortKey, q.SortDir)
	return Paginate(filtered, q.Page, q.PageSize), len(filtered)
}
