package classifier

import (
	"regexp"
	"strings"
)

// Platform is a web app AURA knows how to open.
type Platform struct {
	Name string
	URL  string
}

// platforms is ordered: detection picks the first name found in a message.
var platforms = []Platform{
	{Name: "whatsapp", URL: "https://web.whatsapp.com"},
	{Name: "gmail", URL: "https://mail.google.com"},
	{Name: "email", URL: "https://mail.google.com"},
	{Name: "youtube", URL: "https://www.youtube.com"},
	{Name: "spotify", URL: "https://open.spotify.com"},
	{Name: "google", URL: "https://www.google.com"},
	{Name: "drive", URL: "https://drive.google.com"},
	{Name: "calendar", URL: "https://calendar.google.com"},
	{Name: "maps", URL: "https://maps.google.com"},
	{Name: "twitter", URL: "https://twitter.com"},
	{Name: "x", URL: "https://twitter.com"},
	{Name: "linkedin", URL: "https://www.linkedin.com"},
	{Name: "facebook", URL: "https://www.facebook.com"},
	{Name: "instagram", URL: "https://www.instagram.com"},
}

// Names this short only match as whole words; "x" would otherwise match "text".
const minSubstringPlatformLen = 3

var wordMatchers = func() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp)
	for _, p := range platforms {
		if len(p.Name) < minSubstringPlatformLen {
			m[p.Name] = regexp.MustCompile(`\b` + regexp.QuoteMeta(p.Name) + `\b`)
		}
	}
	return m
}()

// PlatformURL resolves a platform name to its home page.
func PlatformURL(name string) (string, bool) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, p := range platforms {
		if p.Name == normalized {
			return p.URL, true
		}
	}
	return "", false
}

// DetectPlatform returns the first known platform mentioned in lowerMessage.
func DetectPlatform(lowerMessage string) string {
	for _, p := range platforms {
		if re, ok := wordMatchers[p.Name]; ok {
			if re.MatchString(lowerMessage) {
				return p.Name
			}
			continue
		}
		if strings.Contains(lowerMessage, p.Name) {
			return p.Name
		}
	}
	return ""
}
