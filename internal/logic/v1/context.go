package v1

import "context"

type sidContextKey struct{}

// WithBrowserSession returns a context carrying the browser session ID.
// Every outbound API call made on behalf of a browser runs under such a
// context so the unauthorized interceptor can find the session to clear.
func WithBrowserSession(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sidContextKey{}, sid)
}

// BrowserSessionFromContext extracts the browser session ID, if any.
func BrowserSessionFromContext(ctx context.Context) (string, bool) {
	sid, ok := ctx.Value(sidContextKey{}).(string)
	return sid, ok && sid != ""
}
