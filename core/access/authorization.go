// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

/*Package access provides utilities for access control
 */
package access

import (
	"context"
)

// contextKey is the type for context keys. Go linter does not like plain strings
type contextKey string

// the predefined context key
const (
	contextKeyAuthorization contextKey = "_authorization_"
)

/*Authorization is a context object which stores authorization information
for the workflow host calling the adapter.

Authorizations are added to a request context with

  ctx = ContextWithAuthorization(ctx, auth)

and retrieved with

  auth := AuthorizationFromContext(ctx)

*/
type Authorization struct {
	Subject string   `json:"sub"`
	Roles   []string `json:"roles"`
}

// HasRole returns true if the authorization contains the requested role;
// otherwise it returns false.
func (a *Authorization) HasRole(role string) bool {
	if a == nil {
		return false
	}
	for _, hasRole := range a.Roles {
		if role == hasRole {
			return true
		}
	}
	return false
}

// ContextWithAuthorization returns a new context with the given authorization
func ContextWithAuthorization(ctx context.Context, auth *Authorization) context.Context {
	return context.WithValue(ctx, contextKeyAuthorization, auth)
}

// AuthorizationFromContext retrieves the authorization from the context, or nil
func AuthorizationFromContext(ctx context.Context) *Authorization {
	auth, _ := ctx.Value(contextKeyAuthorization).(*Authorization)
	return auth
}
