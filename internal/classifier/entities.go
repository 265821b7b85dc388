package classifier

import (
	"regexp"
	"strings"
)

// DefaultCountryCode is prepended to bare 10-digit phone numbers.
const DefaultCountryCode = "91"

// actionWords are stripped from the front of extracted content and queries.
var actionWords = []string{"saying", "message", "text", "that", "about", "subject", "body", "search", "find", "for"}

var actionWordPrefixes = func() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(actionWords))
	for i, w := range actionWords {
		out[i] = regexp.MustCompile(`(?i)^` + w + `\s+`)
	}
	return out
}()

var nonDigits = regexp.MustCompile(`\D`)

// StripActionWords removes leading action words, one pass in list order.
func StripActionWords(s string) string {
	for _, re := range actionWordPrefixes {
		s = strings.TrimSpace(re.ReplaceAllString(s, ""))
	}
	return s
}

// NormalizePhone keeps digits only and adds the default country code to
// 10-digit numbers. It is idempotent.
func NormalizePhone(s string) string {
	digits := nonDigits.ReplaceAllString(s, "")
	if len(digits) == 10 {
		digits = DefaultCountryCode + digits
	}
	return digits
}

// cleanEntities strips action words from content and query.
func cleanEntities(entities map[string]string) map[string]string {
	out := make(map[string]string, len(entities))
	for k, v := range entities {
		out[k] = v
	}
	for _, key := range []string{"content", "query"} {
		v, ok := out[key]
		if !ok {
			continue
		}
		if v = StripActionWords(v); v == "" {
			delete(out, key)
		} else {
			out[key] = v
		}
	}
	return out
}
