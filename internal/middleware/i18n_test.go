package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(r *http.Request)
		fallback string
		want     string
	}{
		{
			name: "x-locale overrides",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "id")
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			want: "id",
		},
		{
			name: "accept-language used",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "en-US,en;q=0.9")
			},
			want: "en",
		},
		{
			name: "accept-language quality order",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "es-MX,en;q=0.6")
			},
			want: "es",
		},
		{
			name: "regional variant maps to base language",
			setup: func(r *http.Request) {
				r.Header.Set("X-Locale", "fr-CA")
			},
			want: "fr",
		},
		{
			name: "unsupported language falls through",
			setup: func(r *http.Request) {
				r.Header.Set("Accept-Language", "ja-JP")
			},
			fallback: "id",
			want:     "id",
		},
		{
			name:     "configured fallback",
			fallback: "id",
			want:     "id",
		},
		{
			name: "default to en",
			want: "en",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.setup != nil {
				tc.setup(req)
			}
			got := detectLocale(req, tc.fallback)
			if got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestI18NStoresLocaleInContext(t *testing.T) {
	var seen string
	handler := I18N("en")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "id-ID,en;q=0.8")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != "id" {
		t.Fatalf("locale in context = %q, want %q", seen, "id")
	}
}

func TestLocaleFromContext(t *testing.T) {
	ctx := context.Background()
	if got := LocaleFromContext(ctx); got != "en" {
		t.Fatalf("LocaleFromContext() default = %q, want %q", got, "en")
	}
	ctx = context.WithValue(ctx, LocaleKey, "id")
	if got := LocaleFromContext(ctx); got != "id" {
		t.Fatalf("LocaleFromContext() with value = %q, want %q", got, "id")
	}
}
