package seed

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/iziplay/catalog-api/pkg/catalog"
)

// BatchSize is the number of books written per upsert
const BatchSize = 500

// Sink stores imported books
type Sink interface {
	UpsertBooks(ctx context.Context, books []catalog.Book) error
}

// Result summarizes a decoded stream
type Result struct {
	Lines    int `json:"lines"`
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Decode reads JSON lines from r and calls fn for every valid book.
// Malformed lines and records failing validation are logged and skipped.
func Decode(ctx context.Context, r io.Reader, fn func(catalog.Book) error) (Result, error) {
	var result Result

	// Create buffered reader for line-by-line processing
	bufReader := bufio.NewReaderSize(r, 4*1024*1024) // 4MB buffer

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		line, err := bufReader.ReadBytes('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				slog.Warn("Unexpected EOF reached, ending processing", "line", result.Lines+1)
				break
			}
			return result, fmt.Errorf("read error at line %d: %w", result.Lines+1, err)
		}
		eof := errors.Is(err, io.EOF)

		if len(bytes.TrimSpace(line)) > 0 {
			result.Lines++

			book, ok := decodeLine(line, result.Lines)
			if !ok {
				result.Skipped++
			} else {
				if err := fn(book); err != nil {
					return result, err
				}
				result.Imported++
			}
		}

		if eof {
			break
		}
	}

	return result, nil
}

func decodeLine(line []byte, lineNumber int) (catalog.Book, bool) {
	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var raw catalog.RawRecord
	if err := dec.Decode(&raw); err != nil {
		slog.Warn("Failed to parse JSON (skipping)", "line", lineNumber, "error", err)
		return catalog.Book{}, false
	}

	book, err := catalog.Normalize(raw)
	if err != nil {
		slog.Warn("Invalid book (skipping)", "line", lineNumber, "error", err)
		return catalog.Book{}, false
	}
	return book, true
}

// Import loads a .jsonl or .jsonl.gz file into sink
func Import(ctx context.Context, path string, sink Sink, progress *Progress) (Result, error) {
	file, err := os.Open(path)
	if err != nil {
		return Result{}, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer file.Close()

	var r io.Reader = file
	if strings.HasSuffix(path, ".gz") {
		gzReader, err := gzip.NewReader(file)
		if err != nil {
			return Result{}, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		r = gzReader
	}

	progress.Start(path)
	defer progress.End()

	slog.Info("Starting seed import", "file", path)

	batch := make([]catalog.Book, 0, BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := sink.UpsertBooks(ctx, batch); err != nil {
			return err
		}
		progress.Committed(len(batch))
		batch = batch[:0]
		return nil
	}

	result, err := Decode(ctx, r, func(book catalog.Book) error {
		batch = append(batch, book)
		if len(batch) < BatchSize {
			return nil
		}
		return flush()
	})
	if err == nil {
		err = flush()
	}
	progress.Finish(result)
	if err != nil {
		return result, fmt.Errorf("seed import failed: %w", err)
	}

	slog.Info("Seed import completed", "file", path, "imported", result.Imported, "skipped", result.Skipped)
	return result, nil
}
