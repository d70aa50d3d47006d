package usecase

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"FinResearch/pkg/util"

	md "github.com/JohannesKaufmann/html-to-markdown"
)

var (
	jsonFence = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFence  = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*(.*?)\\s*```")
	htmlTag   = regexp.MustCompile(`(?i)</?(p|br|div|span|strong|b|i|em|ul|ol|li|h[1-6]|a|img|table|tr|td|th)(\s[^>]*)?/?>`)
)

// extractJSON finds a JSON object in model output: a ```json fence first, then any
// fence whose body is an object, then the outermost bare {...} span.
func extractJSON(raw string) (string, bool) {
	if m := jsonFence.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if m := anyFence.FindStringSubmatch(raw); m != nil {
		body := strings.TrimSpace(m[1])
		if strings.HasPrefix(body, "{") && strings.HasSuffix(body, "}") {
			return body, true
		}
	}
	start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		body := raw[start : end+1]
		if json.Valid([]byte(body)) {
			return body, true
		}
	}
	return "", false
}

// cleanText converts stray HTML markup to markdown and normalizes whitespace.
func cleanText(s string) string {
	if htmlTag.MatchString(s) {
		conv := md.NewConverter("", true, nil)
		if out, err := conv.ConvertString(s); err == nil {
			s = out
		} else {
			s = htmlTag.ReplaceAllString(s, " ")
		}
	}
	return util.CollapseSpaces(s)
}

// findingsText turns a branch completion into finding text. A findings JSON block
// becomes a bullet list; a present but empty findings list yields "". Anything else
// is returned cleaned as-is.
func findingsText(raw string) string {
	if body, ok := extractJSON(raw); ok {
		var payload struct {
			Findings *[]interface{} `json:"findings"`
		}
		if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Findings != nil {
			var sb strings.Builder
			for _, f := range *payload.Findings {
				line := findingLine(f)
				if line == "" {
					continue
				}
				if sb.Len() > 0 {
					sb.WriteByte('\n')
				}
				sb.WriteString("- ")
				sb.WriteString(line)
			}
			return sb.String()
		}
	}
	return cleanText(raw)
}

func findingLine(v interface{}) string {
	var s string
	switch t := v.(type) {
	case string:
		s = t
	case nil:
		return ""
	default:
		b, err := json.Marshal(t)
		if err != nil {
			s = fmt.Sprint(t)
		} else {
			s = string(b)
		}
	}
	return strings.Join(strings.Fields(cleanText(s)), " ")
}

// reportText reads the synthesized narrative from a {"full_report": "..."} answer.
// Non-JSON answers are used as-is.
func reportText(raw string) string {
	if body, ok := extractJSON(raw); ok {
		var payload struct {
			FullReport string `json:"full_report"`
		}
		if err := json.Unmarshal([]byte(body), &payload); err == nil {
			return cleanText(payload.FullReport)
		}
	}
	return cleanText(raw)
}
