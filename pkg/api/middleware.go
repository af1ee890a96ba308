package routing

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
)

func authMiddleware(api huma.API, secret string) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		isAuthorizationRequired := false
		for _, opScheme := range ctx.Operation().Security {
			if _, ok := opScheme["bearerAuth"]; ok {
				isAuthorizationRequired = true
				break
			}
		}

		// Without a secret the admin routes stay open, main warns about it
		if !isAuthorizationRequired || secret == "" {
			next(ctx)
			return
		}

		tokenString, hasBearer := strings.CutPrefix(ctx.Header("Authorization"), "Bearer ")
		if !hasBearer || tokenString == "" {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing token")
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return []byte(secret), nil
		})

		if err != nil || !token.Valid {
			huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid token", err)
			return
		}

		subject, _ := token.Claims.GetSubject()
		next(huma.WithValue(ctx, subjectKey{}, subject))
	}
}

type subjectKey struct{}

// subjectFrom returns the subject of the validated bearer token, if any
func subjectFrom(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey{}).(string)
	return subject
}
