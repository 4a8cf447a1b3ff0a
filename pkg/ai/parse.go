package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const summarySchemaSource = `{
  "type": "object",
  "required": ["summary"],
  "properties": {
    "summary": {"type": "string"},
    "skills": {
      "type": "object",
      "properties": {
        "technical": {"type": "array", "items": {"type": "string"}},
        "organizational": {"type": "array", "items": {"type": "string"}}
      }
    }
  }
}`

var summarySchema = jsonschema.MustCompileString("cv_summary.json", summarySchemaSource)

var errNoJSONObject = errors.New("no json object found in completion")

// ParseSummary maps a completion to a CVSummary. When no valid structured payload
// is found the error is returned together with a degraded summary holding the raw text.
func ParseSummary(content string) (CVSummary, error) {
	content = strings.TrimSpace(content)

	raw, err := extractJSONObject(content)
	if err == nil {
		var summary CVSummary
		if summary, err = decodeSummary(raw); err == nil {
			return summary, nil
		}
	}

	degraded := CVSummary{Summary: content, Skills: emptySkills(), Degraded: true}
	if degraded.Summary == "" {
		degraded.Summary = FallbackSummary
	}
	return degraded, err
}

func decodeSummary(raw string) (CVSummary, error) {
	var document interface{}
	if err := json.Unmarshal([]byte(raw), &document); err != nil {
		return CVSummary{}, fmt.Errorf("decode summary json: %w", err)
	}
	if err := summarySchema.Validate(document); err != nil {
		return CVSummary{}, fmt.Errorf("summary json does not match schema: %w", err)
	}

	var payload CVSummary
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return CVSummary{}, fmt.Errorf("decode summary json: %w", err)
	}

	payload.Summary = strings.TrimSpace(payload.Summary)
	if payload.Summary == "" {
		payload.Summary = FallbackSummary
	}
	payload.Skills.Technical = normalizeSkills(payload.Skills.Technical)
	payload.Skills.Organizational = normalizeSkills(payload.Skills.Organizational)

	return payload, nil
}

// extractJSONObject returns the first balanced JSON object in content,
// looking inside a fenced code block first.
func extractJSONObject(content string) (string, error) {
	if start := strings.Index(content, "```"); start >= 0 {
		rest := content[start+3:]
		if newline := strings.IndexByte(rest, '\n'); newline >= 0 {
			rest = rest[newline+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			if object, err := scanObject(rest[:end]); err == nil {
				return object, nil
			}
		}
	}

	return scanObject(content)
}

func scanObject(content string) (string, error) {
	start := strings.IndexByte(content, '{')
	if start < 0 {
		return "", errNoJSONObject
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(content); i++ {
		ch := content[i]
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
				return content[start : i+1], nil
			}
		}
	}

	return "", errNoJSONObject
}

func normalizeSkills(skills []string) []string {
	seen := make(map[string]struct{}, len(skills))
	result := make([]string, 0, len(skills))
	for _, skill := range skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		result = append(result, trimmed)
	}
	return result
}
