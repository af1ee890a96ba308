package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/iziplay/catalog-api/pkg/catalog"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when no book has the requested identifier
var ErrNotFound = errors.New("book not found")

// FetchAllBooks returns every book, newest first
func (s *Store) FetchAllBooks(ctx context.Context) ([]catalog.RawRecord, error) {
	var rows []Book
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}

	raws := make([]catalog.RawRecord, len(rows))
	for i := range rows {
		raws[i] = rows[i].Raw()
	}
	return raws, nil
}

// CreateBook inserts a new book. An identifier is generated when book has none.
func (s *Store) CreateBook(ctx context.Context, book catalog.Book) (*catalog.Book, error) {
	row := fromCatalog(book)
	if row.ID == "" {
		row.ID = uuid.NewString()
	}

	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("failed to create book: %w", err)
	}
	s.InvalidateStatsCache()

	return rowToCatalog(&row)
}

// UpdateBook replaces the fields of the book with the given identifier
func (s *Store) UpdateBook(ctx context.Context, id string, book catalog.Book) (*catalog.Book, error) {
	row := fromCatalog(book)
	row.ID = id

	res := s.db.WithContext(ctx).Model(&Book{ID: id}).Select(bookColumns).Updates(&row)
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	s.InvalidateStatsCache()

	var updated Book
	if err := s.db.WithContext(ctx).First(&updated, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload book: %w", err)
	}
	return rowToCatalog(&updated)
}

// DeleteBook removes the book with the given identifier
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&Book{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete book: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	s.InvalidateStatsCache()
	return nil
}

// UpsertBooks creates or updates books in one statement
func (s *Store) UpsertBooks(ctx context.Context, books []catalog.Book) error {
	if len(books) == 0 {
		return nil
	}

	// PostgreSQL refuses to update the same row twice in one statement,
	// the last occurrence of an identifier wins
	rows := make([]Book, 0, len(books))
	index := make(map[string]int, len(books))
	for _, book := range books {
		row := fromCatalog(book)
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		if i, ok := index[row.ID]; ok {
			rows[i] = row
			continue
		}
		index[row.ID] = len(rows)
		rows = append(rows, row)
	}

	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns(bookColumns),
	}).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to upsert books: %w", err)
	}
	s.InvalidateStatsCache()
	return nil
}

func rowToCatalog(row *Book) (*catalog.Book, error) {
	book, err := catalog.Normalize(row.Raw())
	if err != nil {
		return nil, err
	}
	return &book, nil
}
