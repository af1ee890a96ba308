package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iziplay/catalog-api/pkg/catalog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// DefaultTagLimit is the number of tags returned in facets when unspecified
const DefaultTagLimit = 10

// ErrNotFound is returned when a book does not exist in the working set
var ErrNotFound = errors.New("book not found")

// Fetcher loads every known book from a data source
type Fetcher interface {
	FetchAllBooks(ctx context.Context) ([]catalog.RawRecord, error)
}

// FetcherFunc adapts a function to the Fetcher interface
type FetcherFunc func(ctx context.Context) ([]catalog.RawRecord, error)

func (f FetcherFunc) FetchAllBooks(ctx context.Context) ([]catalog.RawRecord, error) {
	return f(ctx)
}

// Page is a query result ready to be rendered
type Page struct {
	catalog.Result
	Window     []catalog.PageItem `json:"window"`
	TotalBooks int                `json:"totalBooks"`
}

// Service runs catalog queries over the books returned by a Fetcher
type Service struct {
	fetcher Fetcher
	group   singleflight.Group
	tracer  trace.Tracer
}

// New creates a service reading books from fetcher
func New(fetcher Fetcher) *Service {
	return &Service{
		fetcher: fetcher,
		tracer:  otel.Tracer("github.com/iziplay/catalog-api/pkg/library"),
	}
}

// WorkingSet loads and normalizes all books. Concurrent calls share a single fetch,
// which keeps running when the caller that started it goes away.
// Invalid records are logged and left out.
func (s *Service) WorkingSet(ctx context.Context) ([]catalog.Book, error) {
	ctx, span := s.tracer.Start(ctx, "library.WorkingSet")
	defer span.End()

	ch := s.group.DoChan("books", func() (interface{}, error) {
		fetchCtx := context.WithoutCancel(ctx)
		raws, err := s.fetcher.FetchAllBooks(fetchCtx)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch books: %w", err)
		}

		books, errs := catalog.NormalizeAll(raws)
		for _, err := range errs {
			slog.WarnContext(fetchCtx, "Skipping invalid book", "error", err)
		}
		return books, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		res.Err = ctx.Err()
	case res = <-ch:
	}
	if res.Err != nil {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		return nil, res.Err
	}

	books := res.Val.([]catalog.Book)
	span.SetAttributes(
		attribute.Int("books.count", len(books)),
		attribute.Bool("books.shared", res.Shared),
	)
	return books, nil
}

// Query filters the working set with spec and returns the requested page
func (s *Service) Query(ctx context.Context, spec catalog.FilterSpec, page, pageSize int) (*Page, error) {
	ctx, span := s.tracer.Start(ctx, "library.Query")
	defer span.End()

	books, err := s.WorkingSet(ctx)
	if err != nil {
		return nil, err
	}

	res := catalog.RunQuery(books, catalog.BuildPredicate(spec), page, pageSize)
	span.SetAttributes(
		attribute.Int("query.matches", res.TotalMatches),
		attribute.Int("query.page", res.Page),
	)

	return &Page{
		Result:     res,
		Window:     catalog.PaginationWindow(res.TotalPages, res.Page),
		TotalBooks: len(books),
	}, nil
}

// Facets returns the filter options of the whole working set
func (s *Service) Facets(ctx context.Context, tagLimit int) (*catalog.Facets, error) {
	ctx, span := s.tracer.Start(ctx, "library.Facets")
	defer span.End()

	books, err := s.WorkingSet(ctx)
	if err != nil {
		return nil, err
	}

	if tagLimit == 0 {
		tagLimit = DefaultTagLimit
	}
	facets := catalog.ExtractFacets(books, tagLimit)
	return &facets, nil
}

// Book returns the book with the given identifier
func (s *Service) Book(ctx context.Context, id string) (*catalog.Book, error) {
	ctx, span := s.tracer.Start(ctx, "library.Book", trace.WithAttributes(attribute.String("book.id", id)))
	defer span.End()

	books, err := s.WorkingSet(ctx)
	if err != nil {
		return nil, err
	}

	for i := range books {
		if books[i].ID == id {
			return &books[i], nil
		}
	}
	return nil, ErrNotFound
}
