package routing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/golang-jwt/jwt/v5"
	"github.com/iziplay/catalog-api/pkg/catalog"
	"github.com/iziplay/catalog-api/pkg/database"
	"github.com/iziplay/catalog-api/pkg/library"
	"github.com/iziplay/catalog-api/pkg/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func books() []catalog.RawRecord {
	return []catalog.RawRecord{
		{"id": "1", "title": "SQL Basics", "author": "Ann", "year": 2024, "pages": 100, "category": "DB", "tags": []string{"sql"}},
		{"id": "2", "title": "React Patterns", "author": "Bob", "year": 2025, "pages": 200, "category": "Web", "tags": []string{"js", "react"}},
		{"id": "3", "title": "Admin Handbook", "author": "Ann", "year": 2020, "pages": 300, "category": "DB", "tags": []string{"sql", "admin"}},
	}
}

type fakeStore struct {
	created []catalog.Book
	deleted []string
	pingErr error
}

func (f *fakeStore) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeStore) CreateBook(ctx context.Context, book catalog.Book) (*catalog.Book, error) {
	f.created = append(f.created, book)
	return &book, nil
}

func (f *fakeStore) UpdateBook(ctx context.Context, id string, book catalog.Book) (*catalog.Book, error) {
	if id != "1" {
		return nil, database.ErrNotFound
	}
	return &book, nil
}

func (f *fakeStore) DeleteBook(ctx context.Context, id string) error {
	if id != "1" {
		return database.ErrNotFound
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStats struct {
	stats *database.CachedStats
}

func (f *fakeStats) GetCachedStats() *database.CachedStats { return f.stats }

func (f *fakeStats) ComputeAndCacheStats(bool) *database.CachedStats { return f.stats }

func newTestAPI(t *testing.T, fetcher library.Fetcher) (humatest.TestAPI, *fakeStore) {
	store := &fakeStore{}
	_, api := humatest.New(t)
	Setup(api, Services{
		Library: library.New(fetcher),
		Books:   store,
		Stats: &fakeStats{stats: &database.CachedStats{
			Count:      3,
			Categories: []database.CategoryCount{{Category: "DB", Count: 2}, {Category: "Web", Count: 1}},
		}},
		Import:    &seed.Progress{},
		Readiness: store,
		JWTSecret: testSecret,
	})
	return api, store
}

func staticFetcher(raws []catalog.RawRecord) library.FetcherFunc {
	return func(ctx context.Context) ([]catalog.RawRecord, error) {
		return raws, nil
	}
}

func token(t *testing.T, secret string) string {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "admin"}).SignedString([]byte(secret))
	require.NoError(t, err)
	return "Authorization: Bearer " + s
}

func TestHealthCheck(t *testing.T) {
	api, _ := newTestAPI(t, staticFetcher(books()))

	resp := api.Get("/healthz")
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "OK", resp.Body.String())
}

func TestReadinessCheck(t *testing.T) {
	api, store := newTestAPI(t, staticFetcher(books()))

	resp := api.Get("/readyz")
	assert.Equal(t, http.StatusOK, resp.Code)

	store.pingErr = errors.New("connection refused")
	resp = api.Get("/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestListBooksFilters(t *testing.T) {
	api, _ := newTestAPI(t, staticFetcher(books()))

	resp := api.Get("/v1/books?categories=DB&year=all")
	require.Equal(t, http.StatusOK, resp.Code)

	var page library.Page
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Items, 2)
	assert.Equal(t, "1", page.Items[0].ID)
	assert.Equal(t, "3", page.Items[1].ID)
	assert.Equal(t, 2, page.TotalMatches)
	assert.Equal(t, 3, page.TotalBooks)

	resp = api.Get("/v1/books?yearFrom=2021")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Equal(t, 2, page.TotalMatches)

	resp = api.Get("/v1/books?yearFrom=soon&search=HANDBOOK")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "3", page.Items[0].ID)
}

func TestListBooksPastLastPage(t *testing.T) {
	api, _ := newTestAPI(t, staticFetcher(books()))

	resp := api.Get("/v1/books?page=1000&limit=12")
	require.Equal(t, http.StatusOK, resp.Code)

	var page library.Page
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalMatches)
}

func TestListBooksHugePage(t *testing.T) {
	api, _ := newTestAPI(t, staticFetcher(books()))

	resp := api.Get("/v1/books?page=4611686018427387904")
	require.Equal(t, http.StatusOK, resp.Code)

	var page library.Page
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
	assert.Empty(t, page.Items)
	assert.Equal(t, 3, page.TotalMatches)
	assert.Equal(t, 1, page.TotalPages)
}

func TestListBooksRejectsUnknownYearBucket(t *testing.T) {
	api, _ := newTestAPI(t, staticFetcher(books()))

	resp := api.Get("/v1/books?year=1999")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestListBooksSourceFailure(t *testing.T) {
	api, _ := newTestAPI(t, library.FetcherFunc(func(ctx context.Context) ([]catalog.RawRecord, error) {
		return nil, errors.New("connection refused")
	}))

	resp := api.Get("/v1/books")
	assert.Equal(t, http.StatusServiceUnavailable, resp.Code)
}

func TestGetBook(t *testing.T) {
	api, _ := newTestAPI(t, staticFetcher(books()))

	resp := api.Get("/v1/books/2")
	require.Equal(t, http.StatusOK, resp.Code)

	var book catalog.Book
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.Equal(t, "React Patterns", book.Title)

	resp = api.Get("/v1/books/42")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGetFacets(t *testing.T) {
	api, _ := newTestAPI(t, staticFetcher(books()))

	resp := api.Get("/v1/facets?tagLimit=1")
	require.Equal(t, http.StatusOK, resp.Code)

	var facets catalog.Facets
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &facets))
	assert.Equal(t, []string{"DB", "Web"}, facets.Categories)
	assert.Equal(t, []string{"Ann", "Bob"}, facets.Authors)
	assert.Equal(t, []catalog.TagCount{{Tag: "sql", Count: 2}}, facets.TopTags)
}

func TestGetStatistics(t *testing.T) {
	api, _ := newTestAPI(t, staticFetcher(books()))

	resp := api.Get("/v1/statistics")
	require.Equal(t, http.StatusOK, resp.Code)

	var stats database.CachedStats
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &stats))
	assert.Equal(t, 3, stats.Count)

	resp = api.Get("/v1/statistics/import")
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCreateBookRequiresToken(t *testing.T) {
	api, store := newTestAPI(t, staticFetcher(books()))
	body := map[string]any{"title": "Go", "author": "Rob", "year": 2025}

	resp := api.Post("/v1/books", body)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = api.Post("/v1/books", token(t, "wrong-secret"), body)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	signed := strings.TrimPrefix(token(t, testSecret), "Authorization: Bearer ")
	resp = api.Post("/v1/books?jwt="+signed, body)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Empty(t, store.created)
}

func TestCreateBook(t *testing.T) {
	api, store := newTestAPI(t, staticFetcher(books()))

	resp := api.Post("/v1/books", token(t, testSecret), map[string]any{
		"title":  "Go",
		"author": "Rob",
		"year":   2025,
		"tags":   []string{"go"},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	var book catalog.Book
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &book))
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, catalog.DefaultCategory, book.Category)
	require.Len(t, store.created, 1)
	assert.Equal(t, []string{"go"}, store.created[0].Tags)
}

func TestCreateBookValidation(t *testing.T) {
	api, store := newTestAPI(t, staticFetcher(books()))

	resp := api.Post("/v1/books", token(t, testSecret), map[string]any{
		"title":  "   ",
		"author": "Rob",
		"year":   2025,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)

	resp = api.Post("/v1/books", token(t, testSecret), map[string]any{"title": "Go"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
	assert.Empty(t, store.created)
}

func TestUpdateBook(t *testing.T) {
	api, _ := newTestAPI(t, staticFetcher(books()))
	body := map[string]any{"title": "SQL Basics, 2nd ed.", "author": "Ann", "year": 2025}

	resp := api.Put("/v1/books/1", token(t, testSecret), body)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = api.Put("/v1/books/9", token(t, testSecret), body)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDeleteBook(t *testing.T) {
	api, store := newTestAPI(t, staticFetcher(books()))

	resp := api.Delete("/v1/books/1", token(t, testSecret))
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.Equal(t, []string{"1"}, store.deleted)

	resp = api.Delete("/v1/books/9", token(t, testSecret))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"DB", "Web"}, splitList(" DB, ,Web,"))
	assert.Nil(t, splitList(""))
}
