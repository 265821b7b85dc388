package completion

import "fmt"

func classifyPrompt(message string) string {
	return fmt.Sprintf(`You are the intent classifier of AURA, a web-based assistant.

Classify the user message into exactly ONE of these intents:
- OPEN_WEB_APP: open a web application (WhatsApp, Gmail, YouTube, Spotify, ...)
- SEND_MESSAGE: send a message (WhatsApp, SMS, ...)
- DRAFT_EMAIL: compose or draft an email
- SUMMARIZE: summarize text, an article or other content
- PLAY_MEDIA: play music, video or other media
- SEARCH: search for information online
- ASK_QUESTION: a general question
- VISION_ANALYZE: analyze an image ("look at this", "what's in this image")
- GREETING: hello, hi, how are you, or the start of a conversation
- UNKNOWN: the intent cannot be determined

Extract these entities when present:
- platform: web app or service mentioned (whatsapp, gmail, youtube, spotify, google)
- recipient: person, phone number or email address
- content: the message body only, WITHOUT action words such as "saying", "message", "text", "draft", "write", "about", "that"
- query: the search query only, WITHOUT action words such as "search", "find", "google", "for"
- media: song, video or other media name

Return the JSON object only, no other text:
{
  "intent": "INTENT_NAME",
  "confidence": 0.95,
  "entities": {
    "platform": "",
    "recipient": "",
    "content": "",
    "query": "",
    "media": ""
  }
}

User message: %q`, message)
}

func replyPrompt(message, memoryContext string) string {
	ctx := ""
	if memoryContext != "" {
		ctx = "Context from memory:\n" + memoryContext + "\n\n"
	}
	return fmt.Sprintf(`You are AURA, a helpful, friendly and intelligent web-based assistant.

%sUser: %s

Respond helpfully and concisely. Be conversational but efficient.`, ctx, message)
}

func visionPrompt(message string) string {
	return fmt.Sprintf(`You are AURA, a helpful assistant. The user shared an image and said: %q

Analyze the image and give helpful information or suggestions based on what you see. Be specific about what you observe and any actions you can help with.`, message)
}

func summarizePrompt(content string) string {
	return fmt.Sprintf(`Summarize the following content concisely while preserving the key information:

%s

Provide a clear, well-structured summary.`, content)
}

func draftPrompt(kind, recipient, context string) string {
	if kind == "email" {
		return fmt.Sprintf(`Draft a professional email to %s. Context: %s.
Format: subject line first, prefixed with "Subject:", then the email body. Be concise and professional.`, recipient, context)
	}
	return fmt.Sprintf(`Draft a friendly message to %s. Context: %s.
Keep it natural and conversational.`, recipient, context)
}
