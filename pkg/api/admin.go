package routing

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/iziplay/catalog-api/pkg/catalog"
	"github.com/iziplay/catalog-api/pkg/database"
)

// BookStore persists catalog changes
type BookStore interface {
	CreateBook(ctx context.Context, book catalog.Book) (*catalog.Book, error)
	UpdateBook(ctx context.Context, id string, book catalog.Book) (*catalog.Book, error)
	DeleteBook(ctx context.Context, id string) error
}

type BookBody struct {
	Title       string   `json:"title" minLength:"1" doc:"Book title"`
	Author      string   `json:"author" minLength:"1" doc:"Book author"`
	Description string   `json:"description,omitempty"`
	Year        int      `json:"year" minimum:"0" maximum:"9999" doc:"Publication year"`
	Pages       int      `json:"pages,omitempty" minimum:"0"`
	Category    string   `json:"category,omitempty" doc:"Defaults to Uncategorized"`
	Tags        []string `json:"tags,omitempty"`
	PDFURL      *string  `json:"pdf_url,omitempty" doc:"Link to the PDF"`
	CoverURL    *string  `json:"cover_url,omitempty" doc:"Link to the cover image"`
}

// book validates the body the same way records from the database are
func (b *BookBody) book(id string) (catalog.Book, error) {
	return catalog.Normalize(catalog.RawRecord{
		"id":          id,
		"title":       b.Title,
		"author":      b.Author,
		"description": b.Description,
		"year":        b.Year,
		"pages":       b.Pages,
		"category":    b.Category,
		"tags":        b.Tags,
		"pdf_url":     b.PDFURL,
		"cover_url":   b.CoverURL,
	})
}

type CreateBookInput struct {
	Body BookBody
}

type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book identifier"`
	Body BookBody
}

type DeleteBookInput struct {
	ID string `path:"id" doc:"Book identifier"`
}

var bearerAuth = []map[string][]string{{"bearerAuth": {}}}

func setupAdmin(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID:   "CreateBook",
		Method:        http.MethodPost,
		Path:          "/v1/books",
		Summary:       "Create a book",
		Tags:          []string{"Admin"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusCreated,
	}, func(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
		book, err := input.Body.book(uuid.NewString())
		if err != nil {
			return nil, validationError(err)
		}

		created, err := svc.Books.CreateBook(ctx, book)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to create book", err)
		}
		return &BookOutput{Body: created}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "UpdateBook",
		Method:      http.MethodPut,
		Path:        "/v1/books/{id}",
		Summary:     "Update a book",
		Tags:        []string{"Admin"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
		book, err := input.Body.book(input.ID)
		if err != nil {
			return nil, validationError(err)
		}

		updated, err := svc.Books.UpdateBook(ctx, input.ID, book)
		if errors.Is(err, database.ErrNotFound) {
			return nil, huma.Error404NotFound("book not found")
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to update book", err)
		}
		return &BookOutput{Body: updated}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "DeleteBook",
		Method:        http.MethodDelete,
		Path:          "/v1/books/{id}",
		Summary:       "Delete a book",
		Tags:          []string{"Admin"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *DeleteBookInput) (*struct{}, error) {
		err := svc.Books.DeleteBook(ctx, input.ID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, huma.Error404NotFound("book not found")
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to delete book", err)
		}
		return nil, nil
	})
}

func validationError(err error) error {
	var verr *catalog.ValidationError
	if errors.As(err, &verr) {
		return huma.Error422UnprocessableEntity(verr.Error(), &huma.ErrorDetail{
			Location: "body." + verr.Field,
			Message:  verr.Reason,
		})
	}
	return huma.Error422UnprocessableEntity("invalid book", err)
}
