package planner

import (
	"net/url"
	"strings"
)

const (
	defaultSearchHome = "https://www.google.com"
	whatsappHome      = "https://web.whatsapp.com"
)

// encodeURIComponent escapes a query value the way browsers do, with %20 for
// spaces rather than '+'.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// SearchURL builds a results page URL for query on platform.
func SearchURL(query, platform string) string {
	q := encodeURIComponent(query)
	switch strings.ToLower(platform) {
	case "youtube":
		return "https://www.youtube.com/results?search_query=" + q
	case "spotify":
		return "https://open.spotify.com/search/" + q
	default:
		return "https://www.google.com/search?q=" + q
	}
}

// GmailComposeURL opens a prefilled Gmail compose window. Empty fields are
// omitted.
func GmailComposeURL(to, subject, body string) string {
	var b strings.Builder
	b.WriteString("https://mail.google.com/mail/?view=cm&fs=1&tf=1&source=mailto")
	if to != "" {
		b.WriteString("&to=" + encodeURIComponent(to))
	}
	if subject != "" {
		b.WriteString("&su=" + encodeURIComponent(subject))
	}
	if body != "" {
		b.WriteString("&body=" + encodeURIComponent(body))
	}
	return b.String()
}

// WhatsAppSendURL deep-links a chat with phone, prefilled with text.
func WhatsAppSendURL(phone, text string) string {
	if phone == "" {
		return whatsappHome + "/send?text=" + encodeURIComponent(text)
	}
	return whatsappHome + "/send?phone=" + phone + "&text=" + encodeURIComponent(text)
}
