package middleware

import (
	"net/http"

	"github.com/mssola/useragent"

	"healthpass/pkg/requestcontext"
)

// ClientMetadata extracts the raw User-Agent and a compact parsed summary
// ("Chrome 126 / Android") into the request context. The summary ends up in
// audit events so the trail records what kind of client scanned a
// credential, without storing the full header.
func ClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ua := r.Header.Get("User-Agent")
		ctx := requestcontext.WithUserAgent(r.Context(), ua)
		if ua != "" {
			ctx = requestcontext.WithClient(ctx, summarizeUserAgent(ua))
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func summarizeUserAgent(raw string) string {
	parsed := useragent.New(raw)
	name, version := parsed.Browser()
	if name == "" {
		return "unknown"
	}
	summary := name
	if version != "" {
		summary += " " + version
	}
	if os := parsed.OS(); os != "" {
		summary += " / " + os
	}
	return summary
}
