package middleware

import (
	"context"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type localeContextKey struct{}

var LocaleKey = localeContextKey{}

// supportedLocales are the languages prompt instructions can be tailored to.
// The first entry is the matcher's ultimate fallback.
var supportedLocales = []language.Tag{
	language.English,
	language.Spanish,
	language.French,
	language.Indonesian,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// I18N stores the request's preferred locale in the context. Preference
// order: X-Locale header, Accept-Language, the configured default.
func I18N(defaultLocale string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := detectLocale(r, defaultLocale)
			ctx := context.WithValue(r.Context(), LocaleKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLocale(r *http.Request, fallback string) string {
	if v := strings.TrimSpace(r.Header.Get("X-Locale")); v != "" {
		if matched := matchLocale(v); matched != "" {
			return matched
		}
	}
	if v := r.Header.Get("Accept-Language"); v != "" {
		if matched := matchLocale(v); matched != "" {
			return matched
		}
	}
	if fallback != "" {
		if matched := matchLocale(fallback); matched != "" {
			return matched
		}
	}
	return "en"
}

// matchLocale maps an Accept-Language style value onto a supported base
// language, or "" when nothing parses.
func matchLocale(value string) string {
	tags, _, err := language.ParseAcceptLanguage(value)
	if err != nil || len(tags) == 0 {
		return ""
	}
	_, index, conf := localeMatcher.Match(tags...)
	if conf == language.No {
		return ""
	}
	base, _ := supportedLocales[index].Base()
	return base.String()
}

func LocaleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LocaleKey).(string); ok {
		return v
	}
	return "en"
}
