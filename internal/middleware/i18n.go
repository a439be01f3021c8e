package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"golang.org/x/text/language"
)

type languageContextKey struct{}
type countryContextKey struct{}

var (
	LanguageKey = languageContextKey{}
	CountryKey  = countryContextKey{}
)

// CountryLookup resolves ISO country codes for an IP address.
type CountryLookup func(ip string) (string, error)

// countryLanguages maps ISO 3166-1 country codes onto the narration language
// a visitor from that country most likely wants. Used only when the request
// carries no language hint of its own.
var countryLanguages = map[string]string{
	"BR": "pt", "PT": "pt",
	"CN": "zh", "TW": "zh",
	"DE": "de", "AT": "de", "CH": "de",
	"ES": "es", "MX": "es", "AR": "es", "CO": "es", "CL": "es", "PE": "es",
	"FR": "fr", "BE": "fr",
	"ID": "id",
	"IN": "hi",
	"IT": "it",
	"JP": "ja",
	"KR": "ko",
	"NL": "nl",
	"PL": "pl",
	"RU": "ru",
	"SA": "ar", "AE": "ar", "EG": "ar",
	"TH": "th",
	"TR": "tr",
	"VN": "vi",
}

// I18N resolves the default narration language for each request: an explicit
// X-Language header wins, then Accept-Language, then the visitor's country,
// then the configured default. The result is an ISO 639-1 code stored in the
// request context; an explicit language in the generation payload still
// overrides it downstream.
func I18N(defaultLanguage string, lookup CountryLookup) func(http.Handler) http.Handler {
	if defaultLanguage == "" {
		defaultLanguage = "en"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			country := resolveCountry(r, lookup)
			lang := detectLanguage(r, defaultLanguage, country)
			ctx := context.WithValue(r.Context(), LanguageKey, lang)
			if country != "" {
				ctx = context.WithValue(ctx, CountryKey, country)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func detectLanguage(r *http.Request, fallback, country string) string {
	if v := normalizeLanguage(r.Header.Get("X-Language")); v != "" {
		return v
	}
	if v := parseAcceptLanguage(r.Header.Get("Accept-Language")); v != "" {
		return v
	}
	if lang, ok := countryLanguages[country]; ok {
		return lang
	}
	return fallback
}

// parseAcceptLanguage picks the highest-weighted tag and reduces it to its
// ISO 639-1 base.
func parseAcceptLanguage(header string) string {
	if strings.TrimSpace(header) == "" {
		return ""
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return ""
	}
	base, conf := tags[0].Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

func normalizeLanguage(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// resolveCountry resolves a best-effort ISO country code for the request:
// proxy headers first, then a GeoIP lookup on the client IP.
func resolveCountry(r *http.Request, lookup CountryLookup) string {
	headerHints := []string{"X-Country-Code", "CF-IPCountry", "X-Appengine-Country"}
	for _, key := range headerHints {
		if val := strings.TrimSpace(r.Header.Get(key)); val != "" {
			return strings.ToUpper(val)
		}
	}
	if lookup != nil {
		if ip := ClientIP(r); ip != "" {
			if country, err := lookup(ip); err == nil && country != "" {
				return strings.ToUpper(country)
			}
		}
	}
	return ""
}

// ClientIP returns the best-effort client IP address for the request.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	if xf := r.Header.Get("X-Forwarded-For"); xf != "" {
		parts := strings.Split(xf, ",")
		if len(parts) > 0 {
			return strings.TrimSpace(parts[0])
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// LanguageFromContext returns the resolved default narration language.
func LanguageFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(LanguageKey).(string); ok {
		return v
	}
	return "en"
}

// CountryFromContext returns the ISO country code stored in the request context.
func CountryFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CountryKey).(string); ok {
		return v
	}
	return ""
}
