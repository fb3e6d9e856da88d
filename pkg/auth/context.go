package auth

import (
	"context"
	"strings"
)

type tokenKey struct{}

/*
WithToken stores the caller's bearer token on ctx so that downstream calls
made while serving the request can forward it.
*/
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the token stored by WithToken, if any.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

/*
Headers returns the headers to send to the MCP server for ctx. The request
token wins over the configured fallback; with neither the map is empty.
*/
func Headers(ctx context.Context, fallback string) map[string]string {
	headers := map[string]string{}
	token := TokenFromContext(ctx)

	if token == "" {
		token = fallback
	}

	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return headers
}

/*
BearerToken extracts the token of an "Authorization: Bearer <token>" header.
The scheme is matched case-insensitively.
*/
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")

	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	return token, token != ""
}
