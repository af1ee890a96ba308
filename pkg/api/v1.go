package routing

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/iziplay/catalog-api/pkg/catalog"
	"github.com/iziplay/catalog-api/pkg/database"
	"github.com/iziplay/catalog-api/pkg/library"
	"github.com/iziplay/catalog-api/pkg/seed"
)

// StatsSource provides cached catalog statistics
type StatsSource interface {
	GetCachedStats() *database.CachedStats
	ComputeAndCacheStats(force bool) *database.CachedStats
}

// Pinger checks that a backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services are the collaborators the routes delegate to
type Services struct {
	Library   *library.Service
	Books     BookStore
	Favorites FavoriteStore
	Stats     StatsSource
	Readiness Pinger
	Import    *seed.Progress
	JWTSecret string
}

type PlainOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

type StatsOutput struct {
	Body database.CachedStats
}

type ImportStatsOutput struct {
	Body seed.ImportStats
}

type ListBooksInput struct {
	Search     string `query:"search" doc:"Case-insensitive text searched in title, author and description"`
	Categories string `query:"categories" doc:"Comma separated list of categories"`
	Authors    string `query:"authors" doc:"Comma separated list of authors"`
	Tags       string `query:"tags" doc:"Comma separated list of tags, a book matches when it has any of them"`
	Year       string `query:"year" default:"all" enum:"all,2025,2024,2023-2021,old" doc:"Publication year range"`
	YearFrom   string `query:"yearFrom" doc:"Inclusive lower year bound, ignored when not an integer"`
	YearTo     string `query:"yearTo" doc:"Inclusive upper year bound, ignored when not an integer"`
	Page       int    `query:"page" default:"1" minimum:"1" doc:"Page number, starting at 1"`
	Limit      int    `query:"limit" default:"12" minimum:"1" maximum:"100" doc:"Books per page"`
}

// FilterSpec converts the query parameters into a catalog filter
func (i *ListBooksInput) FilterSpec() catalog.FilterSpec {
	return catalog.FilterSpec{
		Search:     strings.TrimSpace(i.Search),
		Categories: splitList(i.Categories),
		Authors:    splitList(i.Authors),
		Tags:       splitList(i.Tags),
		Year:       catalog.ParseYearBucket(i.Year),
		YearFrom:   i.YearFrom,
		YearTo:     i.YearTo,
	}
}

type ListBooksOutput struct {
	Body *library.Page
}

type GetBookInput struct {
	ID string `path:"id" doc:"Book identifier"`
}

type BookOutput struct {
	Body *catalog.Book
}

type FacetsInput struct {
	TagLimit int `query:"tagLimit" default:"10" minimum:"1" maximum:"100" doc:"Maximum number of tags returned"`
}

type FacetsOutput struct {
	Body *catalog.Facets
}

func Setup(api huma.API, svc Services) {
	api.UseMiddleware(authMiddleware(api, svc.JWTSecret))

	huma.Register(api, huma.Operation{
		OperationID: "HealthCheck",
		Method:      http.MethodGet,
		Path:        "/healthz",
		Summary:     "Health check",
		Description: "Check if the API is running",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, input *struct{}) (*PlainOutput, error) {
		return &PlainOutput{
			ContentType: "text/plain",
			Body:        []byte("OK"),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ReadinessCheck",
		Method:      http.MethodGet,
		Path:        "/readyz",
		Summary:     "Readiness check",
		Description: "Check if the API can reach its database",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, input *struct{}) (*PlainOutput, error) {
		if svc.Readiness != nil {
			if err := svc.Readiness.Ping(ctx); err != nil {
				return nil, huma.Error503ServiceUnavailable("database is unreachable", err)
			}
		}
		return &PlainOutput{
			ContentType: "text/plain",
			Body:        []byte("OK"),
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "ListBooks",
		Method:      http.MethodGet,
		Path:        "/v1/books",
		Summary:     "List books",
		Description: "Filter the catalog and return one page of books with the page links to display",
		Tags:        []string{"Books"},
	}, func(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
		page, err := svc.Library.Query(ctx, input.FilterSpec(), input.Page, input.Limit)
		if err != nil {
			return nil, sourceError(err)
		}
		return &ListBooksOutput{Body: page}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetBook",
		Method:      http.MethodGet,
		Path:        "/v1/books/{id}",
		Summary:     "Get a book",
		Tags:        []string{"Books"},
	}, func(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
		book, err := svc.Library.Book(ctx, input.ID)
		if errors.Is(err, library.ErrNotFound) {
			return nil, huma.Error404NotFound("book not found")
		}
		if err != nil {
			return nil, sourceError(err)
		}
		return &BookOutput{Body: book}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetFacets",
		Method:      http.MethodGet,
		Path:        "/v1/facets",
		Summary:     "Get filter options",
		Description: "Categories, authors and most used tags of the whole catalog",
		Tags:        []string{"Books"},
	}, func(ctx context.Context, input *FacetsInput) (*FacetsOutput, error) {
		facets, err := svc.Library.Facets(ctx, input.TagLimit)
		if err != nil {
			return nil, sourceError(err)
		}
		return &FacetsOutput{Body: facets}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetStatistics",
		Method:      http.MethodGet,
		Path:        "/v1/statistics",
		Summary:     "Get statistics",
		Description: "Get statistics about current data set",
		Tags:        []string{"Statistics"},
	}, func(ctx context.Context, input *struct{}) (*StatsOutput, error) {
		if svc.Stats == nil {
			return nil, huma.Error503ServiceUnavailable("statistics are not available")
		}
		stats := svc.Stats.GetCachedStats()
		if stats == nil {
			go svc.Stats.ComputeAndCacheStats(false)
			return nil, huma.Error503ServiceUnavailable("stats are being computed, please retry later")
		}
		return &StatsOutput{
			Body: *stats,
		}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "GetImportStatistics",
		Method:      http.MethodGet,
		Path:        "/v1/statistics/import",
		Summary:     "Get import statistics",
		Description: "Get progress of the current or last seed import",
		Tags:        []string{"Statistics"},
	}, func(ctx context.Context, input *struct{}) (*ImportStatsOutput, error) {
		resp := &ImportStatsOutput{}
		resp.Body = svc.Import.Snapshot()
		return resp, nil
	})

	if svc.Books != nil {
		setupAdmin(api, svc)
	}
	if svc.Favorites != nil {
		setupFavorites(api, svc)
	}
}

// sourceError reports a failure of the book source
func sourceError(err error) error {
	return huma.Error503ServiceUnavailable("book source is unavailable", err)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
