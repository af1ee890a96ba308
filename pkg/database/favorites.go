package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iziplay/catalog-api/pkg/catalog"
	"gorm.io/gorm/clause"
)

// ErrFavoriteNotFound is returned when a user has not marked the book
var ErrFavoriteNotFound = errors.New("favorite not found")

// FavoriteBook is a book with the time it was added to the favorites
type FavoriteBook struct {
	catalog.Book
	AddedAt string `json:"addedAt"`
}

// AddFavorite marks a book for userID. Adding it twice is not an error.
func (s *Store) AddFavorite(ctx context.Context, userID, bookID string) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Book{}).Where("id = ?", bookID).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to look up book: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}

	favorite := Favorite{UserID: userID, BookID: bookID}
	if err := s.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&favorite).Error; err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}
	return nil
}

// RemoveFavorite unmarks a book for userID
func (s *Store) RemoveFavorite(ctx context.Context, userID, bookID string) error {
	res := s.db.WithContext(ctx).Delete(&Favorite{}, "user_id = ? AND book_id = ?", userID, bookID)
	if res.Error != nil {
		return fmt.Errorf("failed to remove favorite: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrFavoriteNotFound
	}
	return nil
}

// ListFavorites returns the favorite books of userID, most recently added first
func (s *Store) ListFavorites(ctx context.Context, userID string) ([]FavoriteBook, error) {
	var rows []Favorite
	if err := s.db.WithContext(ctx).
		Preload("Book").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	return favoriteBooks(rows)
}

func favoriteBooks(rows []Favorite) ([]FavoriteBook, error) {
	favorites := make([]FavoriteBook, 0, len(rows))
	for i := range rows {
		book, err := rowToCatalog(&rows[i].Book)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, FavoriteBook{
			Book:    *book,
			AddedAt: rows[i].AddedAt.UTC().Format(time.RFC3339),
		})
	}
	return favorites, nil
}
