// Package header locates column header rows inside loosely structured
// spreadsheet exports. Real-world report vendors move columns around, add
// multi-row preambles and rename columns between releases, so discovery is
// heuristic: a declarative rule table maps each logical field to an ordered
// list of candidate matchers, and one generic locator scans a sheet with a
// per-profile window.
package header

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Field is a logical column the parsers care about.
type Field string

const (
	FieldStoreNumber Field = "store_number"
	FieldStoreName   Field = "store_name"
	FieldUPC         Field = "upc"
	FieldName        Field = "name"
	FieldUnits       Field = "units"
	FieldRevenue     Field = "revenue"
)

// Matcher tests one normalized, lower-cased header cell. Exactly one of
// the match kinds should be set; they are checked in the order exact,
// regex, fuzzy.
type Matcher struct {
	Exact string         // case-insensitive equality
	Regex *regexp.Regexp // applied to the lower-cased cell
	Fuzzy string         // subsequence match via fuzzysearch
}

// Match reports whether the normalized cell satisfies this matcher.
func (m Matcher) Match(cell string) bool {
	lc := strings.ToLower(cell)
	switch {
	case m.Exact != "":
		return lc == strings.ToLower(m.Exact)
	case m.Regex != nil:
		return m.Regex.MatchString(lc)
	case m.Fuzzy != "":
		return fuzzy.MatchNormalizedFold(m.Fuzzy, cell)
	}
	return false
}

// FieldRule maps a logical field to its candidate matchers, most specific
// first. The first matcher that hits any column wins, so ordering encodes
// preference between ambiguous column names.
type FieldRule struct {
	Field    Field
	Matchers []Matcher
}

// Profile parameterizes the locator for one family of workbooks.
type Profile struct {
	Name     string
	ScanRows int         // rows to scan before giving up
	Rules    []FieldRule // column vocabulary
	Require  []Field     // every listed field must be present in the row
	AnyOf    []Field     // at least one must be present, when non-empty
}

// Location is a successfully located header row.
type Location struct {
	Row     int // 0-based index of the header row
	Columns map[Field]int
}

// Col returns the column index for a field, or -1 when the field was not
// found in the header row.
func (l *Location) Col(f Field) int {
	if c, ok := l.Columns[f]; ok {
		return c
	}
	return -1
}

// Normalize trims a raw cell and collapses internal whitespace, matching
// how report generators pad and wrap header text.
func Normalize(cell string) string {
	return strings.Join(strings.Fields(cell), " ")
}

// Locate scans rows top-down for the first row satisfying the profile.
// It returns nil when no row qualifies within the scan window; callers
// must treat that as "no usable data in this sheet", not as an error.
func Locate(rows [][]string, p Profile) *Location {
	limit := p.ScanRows
	if limit > len(rows) {
		limit = len(rows)
	}

	for i := 0; i < limit; i++ {
		norm := normalizeRow(rows[i])
		if norm == nil {
			continue
		}

		cols := matchRow(norm, p.Rules)
		if !hasAll(cols, p.Require) {
			continue
		}
		if len(p.AnyOf) > 0 && !hasAny(cols, p.AnyOf) {
			continue
		}
		return &Location{Row: i, Columns: cols}
	}
	return nil
}

// normalizeRow returns the normalized cells, or nil for a fully blank row.
func normalizeRow(row []string) []string {
	norm := make([]string, len(row))
	blank := true
	for j, cell := range row {
		norm[j] = Normalize(cell)
		if norm[j] != "" {
			blank = false
		}
	}
	if blank {
		return nil
	}
	return norm
}

func matchRow(norm []string, rules []FieldRule) map[Field]int {
	cols := make(map[Field]int, len(rules))
	for _, rule := range rules {
		if col := findColumn(norm, rule.Matchers); col >= 0 {
			cols[rule.Field] = col
		}
	}
	return cols
}

// findColumn tries matchers in preference order; within a matcher, the
// leftmost matching column wins.
func findColumn(norm []string, matchers []Matcher) int {
	for _, m := range matchers {
		for j, cell := range norm {
			if cell == "" {
				continue
			}
			if m.Match(cell) {
				return j
			}
		}
	}
	return -1
}

func hasAll(cols map[Field]int, fields []Field) bool {
	for _, f := range fields {
		if _, ok := cols[f]; !ok {
			return false
		}
	}
	return true
}

func hasAny(cols map[Field]int, fields []Field) bool {
	for _, f := range fields {
		if _, ok := cols[f]; ok {
			return true
		}
	}
	return false
}
