package catalog

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// YearBucket is one of the preset publication year ranges
type YearBucket string

const (
	YearAll        YearBucket = "all"
	Year2025       YearBucket = "2025"
	Year2024       YearBucket = "2024"
	Year2021To2023 YearBucket = "2023-2021"
	YearBefore2021 YearBucket = "old"
)

// YearBuckets lists the accepted bucket values, YearAll first
var YearBuckets = []YearBucket{YearAll, Year2025, Year2024, Year2021To2023, YearBefore2021}

// FilterSpec holds the constraints chosen by the user for one query.
// Empty fields do not constrain anything.
type FilterSpec struct {
	Search     string
	Categories []string
	Authors    []string
	Tags       []string
	Year       YearBucket
	YearFrom   string
	YearTo     string
}

// Predicate tells whether a book matches
type Predicate func(Book) bool

// MatchAll accepts every book
func MatchAll(Book) bool { return true }

// IsZero reports whether the spec leaves every dimension unconstrained
func (f FilterSpec) IsZero() bool {
	_, hasFrom := parseBound(f.YearFrom)
	_, hasTo := parseBound(f.YearTo)
	return strings.TrimSpace(f.Search) == "" &&
		len(f.Categories) == 0 &&
		len(f.Authors) == 0 &&
		len(f.Tags) == 0 &&
		!f.Year.active() &&
		!hasFrom && !hasTo
}

// BuildPredicate returns the conjunction of the active dimensions of the spec
func BuildPredicate(f FilterSpec) Predicate {
	var preds []Predicate

	if q := strings.TrimSpace(f.Search); q != "" {
		needle := fold(q)
		preds = append(preds, func(b Book) bool {
			return strings.Contains(fold(b.Title), needle) ||
				strings.Contains(fold(b.Author), needle) ||
				strings.Contains(fold(b.Description), needle)
		})
	}

	if len(f.Categories) > 0 {
		set := toSet(f.Categories)
		preds = append(preds, func(b Book) bool {
			_, ok := set[b.Category]
			return ok
		})
	}

	if len(f.Authors) > 0 {
		set := toSet(f.Authors)
		preds = append(preds, func(b Book) bool {
			_, ok := set[b.Author]
			return ok
		})
	}

	if len(f.Tags) > 0 {
		set := toSet(f.Tags)
		preds = append(preds, func(b Book) bool {
			for _, tag := range b.Tags {
				if _, ok := set[tag]; ok {
					return true
				}
			}
			return false
		})
	}

	if f.Year.active() {
		bucket := f.Year
		preds = append(preds, func(b Book) bool { return bucket.contains(b.Year) })
	}

	// Unparsable bounds are ignored
	if from, ok := parseBound(f.YearFrom); ok {
		preds = append(preds, func(b Book) bool { return b.Year >= from })
	}
	if to, ok := parseBound(f.YearTo); ok {
		preds = append(preds, func(b Book) bool { return b.Year <= to })
	}

	switch len(preds) {
	case 0:
		return MatchAll
	case 1:
		return preds[0]
	}

	return func(b Book) bool {
		for _, p := range preds {
			if !p(b) {
				return false
			}
		}
		return true
	}
}

// ParseYearBucket maps a wire value to a bucket; unknown values yield YearAll
func ParseYearBucket(s string) YearBucket {
	b := YearBucket(strings.TrimSpace(s))
	for _, known := range YearBuckets {
		if b == known {
			return b
		}
	}
	return YearAll
}

func (y YearBucket) active() bool {
	switch y {
	case Year2025, Year2024, Year2021To2023, YearBefore2021:
		return true
	}
	return false
}

func (y YearBucket) contains(year int) bool {
	switch y {
	case Year2025:
		return year == 2025
	case Year2024:
		return year == 2024
	case Year2021To2023:
		return year >= 2021 && year <= 2023
	case YearBefore2021:
		return year < 2021
	}
	return true
}

func parseBound(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

// fold normalizes s for case-insensitive comparison
func fold(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
