package completion

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xaenox/aura/internal/models"
)

const defaultConfidence = 0.5

// ErrNoJSONObject means the model text contained no balanced JSON object.
var ErrNoJSONObject = errors.New("no JSON object in completion")

// ExtractJSONObject returns the first balanced {...} block in text. Braces
// inside JSON strings are ignored.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	for start >= 0 {
		depth := 0
		inString := false
		escaped := false
		for i := start; i < len(text); i++ {
			ch := text[i]
			if inString {
				switch {
				case escaped:
					escaped = false
				case ch == '\\':
					escaped = true
				case ch == '"':
					inString = false
				}
				continue
			}
			switch ch {
			case '"':
				inString = true
			case '{':
				depth++
			case '}':
				depth--
				if depth == 0 {
					return text[start : i+1], true
				}
			}
		}
		// unbalanced from this brace, try the next one
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

// ParseClassification reads a classification out of raw model output. Missing
// or invalid fields default to UNKNOWN, 0.5 and an empty entity map.
func ParseClassification(raw string) (models.ClassificationResult, error) {
	obj, ok := ExtractJSONObject(raw)
	if !ok {
		return models.Unclassified(), ErrNoJSONObject
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(obj), &fields); err != nil {
		return models.Unclassified(), fmt.Errorf("decode classification: %w", err)
	}

	result := models.ClassificationResult{
		Intent:     models.IntentUnknown,
		Confidence: defaultConfidence,
		Entities:   map[string]string{},
	}
	if s, ok := fields["intent"].(string); ok {
		result.Intent = models.ParseIntent(s)
	}
	if c, ok := parseConfidence(fields["confidence"]); ok {
		result.Confidence = c
	}
	if entities, ok := fields["entities"].(map[string]any); ok {
		for _, key := range models.EntityKeys {
			if v := entityString(entities[key]); v != "" {
				result.Entities[key] = v
			}
		}
	}
	return result, nil
}

func parseConfidence(v any) (float64, bool) {
	var c float64
	switch t := v.(type) {
	case float64:
		c = t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		c = f
	default:
		return 0, false
	}
	if c < 0 || c > 1 {
		return 0, false
	}
	return c, true
}

func entityString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}
