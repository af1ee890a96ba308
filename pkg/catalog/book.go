package catalog

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultCategory is assigned to books without a category
const DefaultCategory = "Uncategorized"

// Book is a normalized catalog record
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Description string   `json:"description"`
	Year        int      `json:"year"`
	Pages       int      `json:"pages"`
	Category    string   `json:"category"`
	Tags        []string `json:"tags"`
	PDFURL      *string  `json:"pdf_url"`
	CoverURL    *string  `json:"cover_url"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// RawRecord is a book as handed over by a data source, before normalization
type RawRecord map[string]any

// ValidationError reports a required field that is missing or malformed
type ValidationError struct {
	ID     string
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("invalid book: %s %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid book %s: %s %s", e.ID, e.Field, e.Reason)
}

// Normalize converts a raw record into a Book.
// Optional fields fall back to defaults, required ones (id, title, author,
// year, pages) produce a *ValidationError.
func Normalize(raw RawRecord) (Book, error) {
	var book Book

	id, err := requiredString(raw, "id", "")
	if err != nil {
		return Book{}, err
	}
	book.ID = id

	if book.Title, err = requiredString(raw, "title", id); err != nil {
		return Book{}, err
	}
	if book.Author, err = requiredString(raw, "author", id); err != nil {
		return Book{}, err
	}
	if book.Year, err = requiredInt(raw, "year", id); err != nil {
		return Book{}, err
	}
	if book.Pages, err = requiredInt(raw, "pages", id); err != nil {
		return Book{}, err
	}
	if book.Pages < 0 {
		return Book{}, &ValidationError{ID: id, Field: "pages", Reason: "must not be negative"}
	}

	book.Description, _ = raw["description"].(string)

	book.Category, _ = raw["category"].(string)
	if strings.TrimSpace(book.Category) == "" {
		book.Category = DefaultCategory
	}

	book.Tags = stringList(raw["tags"])
	book.PDFURL = optionalString(raw["pdf_url"])
	book.CoverURL = optionalString(raw["cover_url"])
	book.CreatedAt = timestamp(raw["created_at"])
	book.UpdatedAt = timestamp(raw["updated_at"])

	return book, nil
}

// NormalizeAll normalizes a batch of raw records. Invalid records and
// duplicate identifiers are left out of the result and reported as errors.
func NormalizeAll(raws []RawRecord) ([]Book, []error) {
	books := make([]Book, 0, len(raws))
	seen := make(map[string]struct{}, len(raws))
	var errs []error

	for _, raw := range raws {
		book, err := Normalize(raw)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if _, dup := seen[book.ID]; dup {
			errs = append(errs, &ValidationError{ID: book.ID, Field: "id", Reason: "is duplicated"})
			continue
		}
		seen[book.ID] = struct{}{}
		books = append(books, book)
	}

	return books, errs
}

func requiredString(raw RawRecord, field, id string) (string, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return "", &ValidationError{ID: id, Field: field, Reason: "is missing"}
	}
	s, ok := v.(string)
	if !ok {
		return "", &ValidationError{ID: id, Field: field, Reason: fmt.Sprintf("must be a string, got %T", v)}
	}
	if strings.TrimSpace(s) == "" {
		return "", &ValidationError{ID: id, Field: field, Reason: "is empty"}
	}
	return s, nil
}

func requiredInt(raw RawRecord, field, id string) (int, error) {
	v, ok := raw[field]
	if !ok || v == nil {
		return 0, &ValidationError{ID: id, Field: field, Reason: "is missing"}
	}

	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if i, ok := integral(n); ok {
			return i, nil
		}
	case json.Number:
		if i, err := strconv.Atoi(n.String()); err == nil {
			return i, nil
		}
		if f, err := n.Float64(); err == nil {
			if i, ok := integral(f); ok {
				return i, nil
			}
		}
	}

	return 0, &ValidationError{ID: id, Field: field, Reason: fmt.Sprintf("must be an integer, got %v", v)}
}

// integral converts f when it is a whole number that fits in an int
func integral(f float64) (int, bool) {
	if f != math.Trunc(f) || f < math.MinInt || f >= -math.MinInt {
		return 0, false
	}
	return int(f), true
}

func stringList(v any) []string {
	tags := []string{}
	switch list := v.(type) {
	case []string:
		for _, tag := range list {
			if tag != "" {
				tags = append(tags, tag)
			}
		}
	case []any:
		for _, item := range list {
			if tag, ok := item.(string); ok && tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}

func optionalString(v any) *string {
	switch s := v.(type) {
	case string:
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return &s
	case *string:
		if s == nil || strings.TrimSpace(*s) == "" {
			return nil
		}
		out := *s
		return &out
	}
	return nil
}

func timestamp(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case time.Time:
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	}
	return ""
}
