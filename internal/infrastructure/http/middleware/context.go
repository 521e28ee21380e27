package middleware

import "context"

type contextKey string

const authContextKey contextKey = "auth"

type authContext struct {
	projectID string
	userID    string
	loginID   string
}

// WithAuth injects the validated token claims into the context.
func WithAuth(ctx context.Context, projectID, userID, loginID string) context.Context {
	return context.WithValue(ctx, authContextKey, authContext{projectID: projectID, userID: userID, loginID: loginID})
}

// AuthFromContext returns the claims set by AuthValidator, or empty strings.
func AuthFromContext(ctx context.Context) (projectID, userID, loginID string) {
	v := ctx.Value(authContextKey)
	if v == nil {
		return "", "", ""
	}
	a, _ := v.(authContext)
	return a.projectID, a.userID, a.loginID
}
