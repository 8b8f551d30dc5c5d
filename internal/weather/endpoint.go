package weather

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// DefaultBaseURL is the Dark Sky API root.
const DefaultBaseURL = "https://api.darksky.net"

// Data blocks we never read.
var excludedBlocks = []string{"minutely", "alerts", "flags"}

// Endpoint builds forecast request URLs.
type Endpoint struct {
	BaseURL  string
	APIKey   string
	Language language.Tag
}

// NewEndpoint returns an Endpoint for the given base URL, API key and locale
// string (e.g. "ko_KR.UTF-8", "en-US"). An empty base URL selects
// DefaultBaseURL.
func NewEndpoint(baseURL, apiKey, locale string) Endpoint {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	return Endpoint{
		BaseURL:  base,
		APIKey:   apiKey,
		Language: ParseLocale(locale),
	}
}

// URL returns the forecast URL for c.
func (e Endpoint) URL(c Coordinate) string {
	var b strings.Builder
	b.WriteString(e.BaseURL)
	b.WriteString("/forecast/")
	b.WriteString(e.APIKey)
	b.WriteByte('/')
	b.WriteString(formatDegrees(c.Latitude))
	b.WriteByte(',')
	b.WriteString(formatDegrees(c.Longitude))
	b.WriteByte('?')
	b.WriteString(e.Query())
	return b.String()
}

// Query returns the raw query string. Commas are left unescaped.
func (e Endpoint) Query() string {
	exclude := "exclude=" + strings.Join(excludedBlocks, ",")
	if isKorean(e.Language) {
		return "lang=ko&" + exclude
	}
	return exclude
}

// ParseLocale turns a POSIX or BCP 47 locale string into a language tag.
// Unparseable input yields language.Und.
func ParseLocale(s string) language.Tag {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.ReplaceAll(s, "_", "-")
	if s == "" || s == "C" || s == "POSIX" {
		return language.Und
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und
	}
	return tag
}

func isKorean(tag language.Tag) bool {
	base, conf := tag.Base()
	if conf == language.No {
		return false
	}
	ko, _ := language.Korean.Base()
	return base == ko
}

func formatDegrees(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
