// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

package access

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"
	"github.com/relabs-tech/netpie/core/logger"
)

// Claims are the JWT claims accepted by the middleware
type Claims struct {
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// NewJwtMiddleware returns a middleware handler to validate HS256 signed JWT
// bearer tokens, passed as "Authorization: Bearer" header.
//
// This is a final handler with regards to the bearer token. It returns
// http.StatusUnauthorized when the token is missing or invalid, and stores
// the authorization in the request context otherwise.
func NewJwtMiddleware(secret []byte) mux.MiddlewareFunc {
	if len(secret) == 0 {
		panic("jwt secret is missing")
	}

	keyFunc := func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return secret, nil
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rlog := logger.FromContext(r.Context())

			tokenString, err := bearerToken(r)
			if err != nil {
				http.Error(w, err.Error(), http.StatusUnauthorized)
				return
			}

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, keyFunc)
			if err != nil || !token.Valid {
				rlog.WithError(err).Warnln("rejected bearer token")
				http.Error(w, "invalid bearer token", http.StatusUnauthorized)
				return
			}

			auth := &Authorization{Subject: claims.Subject, Roles: claims.Roles}
			ctx, _ := logger.ContextWithLoggerIdentity(r.Context(), claims.Subject)
			ctx = ContextWithAuthorization(ctx, auth)
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, error) {
	bearer := r.Header.Get("Authorization")
	if len(bearer) == 0 {
		return "", errors.New("missing bearer token")
	}
	if len(bearer) < 8 || strings.ToLower(bearer[:7]) != "bearer " {
		return "", errors.New("authorization is not a bearer token")
	}
	return bearer[7:], nil
}
