package database

import (
	"time"

	"github.com/iziplay/catalog-api/pkg/catalog"
	"github.com/lib/pq"
)

type Model struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Book struct {
	Model

	ID          string         `gorm:"primaryKey"`
	Title       string         `gorm:"not null"`
	Author      string         `gorm:"not null;index:idx_book_author"`
	Description string         `gorm:"not null;default:''"`
	Year        int            `gorm:"not null;index:idx_book_year"`
	Pages       int            `gorm:"not null;default:0"`
	Category    string         `gorm:"not null;index:idx_book_category"`
	Tags        pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	PDFURL      *string        `gorm:"column:pdf_url"`
	CoverURL    *string        `gorm:"column:cover_url"`
}

// Favorite marks a book for a user, the user being the subject of their token
type Favorite struct {
	UserID  string    `gorm:"primaryKey"`
	BookID  string    `gorm:"primaryKey;index:idx_favorite_book"`
	AddedAt time.Time `gorm:"not null;autoCreateTime"`
	Book    Book      `gorm:"foreignKey:BookID;constraint:OnDelete:CASCADE"`
}

// bookColumns are the columns written on update
var bookColumns = []string{"title", "author", "description", "year", "pages", "category", "tags", "pdf_url", "cover_url", "updated_at"}

// Raw exposes the row the way the catalog expects records from a data source
func (b *Book) Raw() catalog.RawRecord {
	return catalog.RawRecord{
		"id":          b.ID,
		"title":       b.Title,
		"author":      b.Author,
		"description": b.Description,
		"year":        b.Year,
		"pages":       b.Pages,
		"category":    b.Category,
		"tags":        []string(b.Tags),
		"pdf_url":     b.PDFURL,
		"cover_url":   b.CoverURL,
		"created_at":  b.CreatedAt,
		"updated_at":  b.UpdatedAt,
	}
}

// fromCatalog builds a row from a catalog book, cleaning text for PostgreSQL
func fromCatalog(book catalog.Book) Book {
	tags := make([]string, 0, len(book.Tags))
	for _, tag := range book.Tags {
		if tag = sanitizeString(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	category := sanitizeString(book.Category)
	if category == "" {
		category = catalog.DefaultCategory
	}

	return Book{
		ID:          sanitizeString(book.ID),
		Title:       sanitizeString(book.Title),
		Author:      sanitizeString(book.Author),
		Description: sanitizeString(book.Description),
		Year:        book.Year,
		Pages:       book.Pages,
		Category:    category,
		Tags:        pq.StringArray(tags),
		PDFURL:      sanitizeOptional(book.PDFURL),
		CoverURL:    sanitizeOptional(book.CoverURL),
	}
}
