package story

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

// ParseStructured decodes model output as a JSON array of stories, or an object
// wrapping that array under "user_stories" or "stories". Elements without story
// text are dropped. ok is false when nothing usable was decoded.
func ParseStructured(raw string) (stories []model.Story, ok bool) {
	content := []byte(stripCodeFence(raw))

	var elements []json.RawMessage
	if err := json.Unmarshal(content, &elements); err != nil {
		var wrapped struct {
			UserStories []json.RawMessage `json:"user_stories"`
			Stories     []json.RawMessage `json:"stories"`
		}
		if err := json.Unmarshal(content, &wrapped); err != nil {
			return nil, false
		}
		elements = wrapped.UserStories
		if len(elements) == 0 {
			elements = wrapped.Stories
		}
	}

	for _, element := range elements {
		if bytes.Equal(bytes.TrimSpace(element), []byte("null")) {
			continue
		}
		var s model.Story
		if err := json.Unmarshal(element, &s); err != nil {
			continue
		}
		stories = append(stories, s)
	}

	return stories, len(stories) > 0
}

// Parse tries the structured path first and falls back to the line scanner.
// usedFallback reports which path produced the stories.
func Parse(raw string) (stories []model.Story, usedFallback bool) {
	if stories, ok := ParseStructured(raw); ok {
		return stories, false
	}
	return ParseFallback(raw), true
}

// stripCodeFence removes a surrounding ``` or ```json fence if present.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}
