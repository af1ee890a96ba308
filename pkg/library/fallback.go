package library

import (
	"context"
	"log/slog"

	"github.com/iziplay/catalog-api/pkg/catalog"
)

type fallbackFetcher struct {
	primary   Fetcher
	secondary Fetcher
}

// Fallback returns a Fetcher serving secondary whenever primary fails
func Fallback(primary, secondary Fetcher) Fetcher {
	return &fallbackFetcher{primary: primary, secondary: secondary}
}

func (f *fallbackFetcher) FetchAllBooks(ctx context.Context) ([]catalog.RawRecord, error) {
	raws, err := f.primary.FetchAllBooks(ctx)
	if err == nil {
		return raws, nil
	}

	slog.WarnContext(ctx, "Primary book source failed, using fallback", "error", err)
	return f.secondary.FetchAllBooks(ctx)
}
