package routing

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/iziplay/catalog-api/pkg/database"
)

// FavoriteStore keeps the books each user marked
type FavoriteStore interface {
	AddFavorite(ctx context.Context, userID, bookID string) error
	RemoveFavorite(ctx context.Context, userID, bookID string) error
	ListFavorites(ctx context.Context, userID string) ([]database.FavoriteBook, error)
}

type ListFavoritesOutput struct {
	Body []database.FavoriteBook
}

type AddFavoriteInput struct {
	Body struct {
		BookID string `json:"bookId" minLength:"1" doc:"Book identifier"`
	}
}

type RemoveFavoriteInput struct {
	BookID string `path:"bookId" doc:"Book identifier"`
}

func setupFavorites(api huma.API, svc Services) {
	huma.Register(api, huma.Operation{
		OperationID: "ListFavorites",
		Method:      http.MethodGet,
		Path:        "/v1/favorites",
		Summary:     "List favorites",
		Description: "Books marked by the token subject, most recently added first",
		Tags:        []string{"Favorites"},
		Security:    bearerAuth,
	}, func(ctx context.Context, input *struct{}) (*ListFavoritesOutput, error) {
		user, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		favorites, err := svc.Favorites.ListFavorites(ctx, user)
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to list favorites", err)
		}
		return &ListFavoritesOutput{Body: favorites}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "AddFavorite",
		Method:        http.MethodPost,
		Path:          "/v1/favorites",
		Summary:       "Add a favorite",
		Tags:          []string{"Favorites"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *AddFavoriteInput) (*struct{}, error) {
		user, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		err = svc.Favorites.AddFavorite(ctx, user, input.Body.BookID)
		if errors.Is(err, database.ErrNotFound) {
			return nil, huma.Error404NotFound("book not found")
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to add favorite", err)
		}
		return nil, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "RemoveFavorite",
		Method:        http.MethodDelete,
		Path:          "/v1/favorites/{bookId}",
		Summary:       "Remove a favorite",
		Tags:          []string{"Favorites"},
		Security:      bearerAuth,
		DefaultStatus: http.StatusNoContent,
	}, func(ctx context.Context, input *RemoveFavoriteInput) (*struct{}, error) {
		user, err := currentUser(ctx)
		if err != nil {
			return nil, err
		}

		err = svc.Favorites.RemoveFavorite(ctx, user, input.BookID)
		if errors.Is(err, database.ErrFavoriteNotFound) {
			return nil, huma.Error404NotFound("favorite not found")
		}
		if err != nil {
			return nil, huma.Error500InternalServerError("failed to remove favorite", err)
		}
		return nil, nil
	})
}

// currentUser requires a validated token carrying a subject
func currentUser(ctx context.Context) (string, error) {
	user := subjectFrom(ctx)
	if user == "" {
		return "", huma.Error401Unauthorized("token has no subject")
	}
	return user, nil
}
