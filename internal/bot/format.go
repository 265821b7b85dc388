package bot

import (
	"fmt"
	"strings"

	"github.com/xaenox/aura/internal/models"
)

var markdownSpecialChars = []string{"\\", "_", "*", "[", "]", "(", ")", "~", "`", ">", "#", "+", "-", "=", "|", "{", "}", ".", "!"}

// escapeMarkdown escapes text for MarkdownV2.
func escapeMarkdown(text string) string {
	escaped := text
	for _, char := range markdownSpecialChars {
		escaped = strings.ReplaceAll(escaped, char, "\\"+char)
	}
	return escaped
}

// escapeLinkURL escapes the inside of a MarkdownV2 inline link target.
func escapeLinkURL(url string) string {
	return strings.NewReplacer(`\`, `\\`, `)`, `\)`).Replace(url)
}

// formatResponse renders a pipeline response as a MarkdownV2 message.
func formatResponse(resp models.Response) string {
	var b strings.Builder

	if !resp.Success {
		b.WriteString("⛔ *Blocked*\n")
		b.WriteString(escapeMarkdown(resp.Message))
		if resp.Error != "" {
			b.WriteString("\n\n_" + escapeMarkdown(resp.Error) + "_")
		}
		return b.String()
	}

	b.WriteString(escapeMarkdown(resp.Message))

	if a := resp.Action; a != nil && a.Type == models.ActionOpenURL && a.URL != "" {
		label := a.Description
		if label == "" {
			label = "Open link"
		}
		fmt.Fprintf(&b, "\n\n🔗 [%s](%s)", escapeMarkdown(label), escapeLinkURL(a.URL))
		if a.Content != "" {
			b.WriteString("\n>" + escapeMarkdown(a.Content))
		}
	}

	if resp.RequiresConfirmation {
		fmt.Fprintf(&b, "\n\n*Risk:* %s\n", escapeMarkdown(string(resp.RiskLevel)))
		b.WriteString(escapeMarkdown("Nothing happens until you tap Confirm."))
	}

	return b.String()
}
