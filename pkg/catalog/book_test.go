package catalog

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDefaults(t *testing.T) {
	book, err := Normalize(RawRecord{
		"id":     "b1",
		"title":  "Go in Practice",
		"author": "Jane Doe",
		"year":   float64(2024),
		"pages":  320,
	})
	require.NoError(t, err)

	assert.Equal(t, "b1", book.ID)
	assert.Equal(t, 2024, book.Year)
	assert.Equal(t, 320, book.Pages)
	assert.Equal(t, "", book.Description)
	assert.Equal(t, DefaultCategory, book.Category)
	assert.Equal(t, []string{}, book.Tags)
	assert.Nil(t, book.PDFURL)
	assert.Nil(t, book.CoverURL)
}

func TestNormalizeOptionalFields(t *testing.T) {
	created := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	book, err := Normalize(RawRecord{
		"id":          "b2",
		"title":       "PostgreSQL",
		"author":      "Maria",
		"description": "Tuning guide",
		"year":        json.Number("2023"),
		"pages":       int64(200),
		"category":    "DB",
		"tags":        []any{"sql", 42, "", "admin"},
		"pdf_url":     "https://example.org/pg.pdf",
		"cover_url":   "   ",
		"created_at":  created,
		"updated_at":  "2025-03-02T00:00:00Z",
	})
	require.NoError(t, err)

	assert.Equal(t, "Tuning guide", book.Description)
	assert.Equal(t, 2023, book.Year)
	assert.Equal(t, "DB", book.Category)
	assert.Equal(t, []string{"sql", "admin"}, book.Tags)
	require.NotNil(t, book.PDFURL)
	assert.Equal(t, "https://example.org/pg.pdf", *book.PDFURL)
	assert.Nil(t, book.CoverURL)
	assert.Equal(t, "2025-03-01T10:00:00Z", book.CreatedAt)
	assert.Equal(t, "2025-03-02T00:00:00Z", book.UpdatedAt)
}

func TestNormalizeMalformedOptionalFields(t *testing.T) {
	book, err := Normalize(RawRecord{
		"id":          "b3",
		"title":       "T",
		"author":      "A",
		"year":        2020,
		"pages":       0,
		"description": 12,
		"category":    []string{"x"},
		"tags":        "not-a-list",
		"pdf_url":     false,
	})
	require.NoError(t, err)

	assert.Equal(t, "", book.Description)
	assert.Equal(t, DefaultCategory, book.Category)
	assert.Equal(t, []string{}, book.Tags)
	assert.Nil(t, book.PDFURL)
}

func TestNormalizeRequiredFields(t *testing.T) {
	valid := func() RawRecord {
		return RawRecord{"id": "b", "title": "T", "author": "A", "year": 2020, "pages": 10}
	}

	cases := []struct {
		name  string
		edit  func(RawRecord)
		field string
	}{
		{"missing id", func(r RawRecord) { delete(r, "id") }, "id"},
		{"numeric id", func(r RawRecord) { r["id"] = 7 }, "id"},
		{"missing title", func(r RawRecord) { delete(r, "title") }, "title"},
		{"blank id", func(r RawRecord) { r["id"] = "" }, "id"},
		{"blank author", func(r RawRecord) { r["author"] = "  " }, "author"},
		{"string year", func(r RawRecord) { r["year"] = "2020" }, "year"},
		{"fractional year", func(r RawRecord) { r["year"] = 2020.5 }, "year"},
		{"huge year", func(r RawRecord) { r["year"] = 1e300 }, "year"},
		{"infinite year", func(r RawRecord) { r["year"] = math.Inf(1) }, "year"},
		{"fractional number year", func(r RawRecord) { r["year"] = json.Number("2020.5") }, "year"},
		{"huge number pages", func(r RawRecord) { r["pages"] = json.Number("1e300") }, "pages"},
		{"null pages", func(r RawRecord) { r["pages"] = nil }, "pages"},
		{"negative pages", func(r RawRecord) { r["pages"] = -1 }, "pages"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := valid()
			tc.edit(raw)

			_, err := Normalize(raw)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

func TestNormalizeIntegralNumbers(t *testing.T) {
	for _, year := range []any{2024, int64(2024), 2024.0, json.Number("2024"), json.Number("2024.0"), json.Number("2.024e3")} {
		book, err := Normalize(RawRecord{"id": "b", "title": "T", "author": "A", "year": year, "pages": 10})
		require.NoError(t, err, "%#v", year)
		assert.Equal(t, 2024, book.Year)
	}
}

func TestNormalizeAllExcludesInvalid(t *testing.T) {
	books, errs := NormalizeAll([]RawRecord{
		{"id": "1", "title": "A", "author": "X", "year": 2020, "pages": 1},
		{"id": "2", "title": "B", "author": "Y", "pages": 1},
		{"id": "3", "title": "C", "author": "Z", "year": 2021, "pages": 1},
		{"id": "1", "title": "D", "author": "W", "year": 2022, "pages": 1},
	})

	require.Len(t, books, 2)
	assert.Equal(t, "1", books[0].ID)
	assert.Equal(t, "A", books[0].Title)
	assert.Equal(t, "3", books[1].ID)
	assert.Len(t, errs, 2)
}

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "invalid book: id is missing", (&ValidationError{Field: "id", Reason: "is missing"}).Error())
	assert.Equal(t, "invalid book b1: year is missing", (&ValidationError{ID: "b1", Field: "year", Reason: "is missing"}).Error())
}
