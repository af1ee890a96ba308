package seed

import (
	"bytes"
	"context"
	_ "embed"
	"time"

	"github.com/iziplay/catalog-api/pkg/catalog"
)

//go:embed demo.jsonl
var demoBooks []byte

// DemoFetcher serves the embedded demo books
type DemoFetcher struct{}

// Demo returns a fetcher over the embedded demo books
func Demo() DemoFetcher {
	return DemoFetcher{}
}

// FetchAllBooks returns the demo books stamped with the current time
func (DemoFetcher) FetchAllBooks(ctx context.Context) ([]catalog.RawRecord, error) {
	now := time.Now().UTC()

	var raws []catalog.RawRecord
	_, err := Decode(ctx, bytes.NewReader(demoBooks), func(book catalog.Book) error {
		raws = append(raws, catalog.RawRecord{
			"id":          book.ID,
			"title":       book.Title,
			"author":      book.Author,
			"description": book.Description,
			"year":        book.Year,
			"pages":       book.Pages,
			"category":    book.Category,
			"tags":        book.Tags,
			"pdf_url":     book.PDFURL,
			"cover_url":   book.CoverURL,
			"created_at":  now,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return raws, nil
}
