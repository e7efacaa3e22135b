package resolver

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// urlFields are the object keys that may hold a ready-made media URL, in priority order.
var urlFields = []string{"url", "video_url", "download_url"}

// nestedFields wrap a second payload one level down, in priority order.
var nestedFields = []string{"result", "data"}

// Rule pulls a direct media URL out of a decoded resolver payload.
type Rule struct {
	Name    string
	Extract func(payload any) (string, bool)
}

// Rules are tried in order; the first match wins.
var Rules = []Rule{
	{Name: "string_root", Extract: fromString},
	{Name: "url_field", Extract: fromURLField},
	{Name: "media_array", Extract: fromMediaArray},
	{Name: "nested", Extract: fromNested},
}

// NoMediaURLError reports a payload none of the rules could read.
// It carries only the top-level field names, never the payload itself.
type NoMediaURLError struct {
	Fields []string
}

func (e *NoMediaURLError) Error() string {
	return fmt.Sprintf("could not extract video URL from response; response fields: [%s]", strings.Join(e.Fields, ", "))
}

// DecodePayload turns a response body into the loosely typed value the rules
// inspect. Bodies that are not JSON are kept as trimmed text.
func DecodePayload(body []byte) any {
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return strings.TrimSpace(string(body))
	}
	return v
}

// Extract runs Rules against payload and returns the rule name that matched.
func Extract(payload any) (string, string, error) {
	for _, r := range Rules {
		if u, ok := r.Extract(payload); ok {
			return u, r.Name, nil
		}
	}
	return "", "", &NoMediaURLError{Fields: topLevelFields(payload)}
}

func fromString(payload any) (string, bool) {
	s, ok := payload.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http") {
		return "", false
	}
	return s, true
}

func fromURLField(payload any) (string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	for _, f := range urlFields {
		if s, ok := obj[f].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s), true
		}
	}
	return "", false
}

func fromMediaArray(payload any) (string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	media, ok := obj["media"].([]any)
	if !ok || len(media) == 0 {
		return "", false
	}

	item, ok := pickMedia(media).(map[string]any)
	if !ok {
		return "", false
	}
	u, ok := fromURLField(item)
	if !ok {
		return "", false
	}
	if thumb, _ := item["thumbnail"].(string); thumb != "" && thumb == u {
		return "", false
	}
	return u, true
}

// pickMedia prefers a video or HD entry and falls back to the first one.
func pickMedia(media []any) any {
	for _, m := range media {
		item, ok := m.(map[string]any)
		if !ok {
			continue
		}
		if typ, _ := item["type"].(string); typ == "video" {
			return item
		}
		if q, _ := item["quality"].(string); q == "HD" {
			return item
		}
	}
	return media[0]
}

func fromNested(payload any) (string, bool) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return "", false
	}
	for _, f := range nestedFields {
		inner, ok := obj[f]
		if !ok || inner == nil {
			continue
		}
		if u, ok := fromString(inner); ok {
			return u, true
		}
		if u, ok := fromURLField(inner); ok {
			return u, true
		}
	}
	return "", false
}

func topLevelFields(payload any) []string {
	obj, ok := payload.(map[string]any)
	if !ok {
		return []string{}
	}
	fields := make([]string, 0, len(obj))
	for k := range obj {
		fields = append(fields, k)
	}
	sort.Strings(fields)
	return fields
}
