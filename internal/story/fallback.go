package story

import (
	"strings"
	"unicode"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

const DefaultStory = "As a user, I want to implement the requirements so that the system meets the business needs."

var DefaultCriteria = []string{
	"Given the requirements are clear, When implemented correctly, Then the system should meet business needs",
	"Given the system is implemented, When tested thoroughly, Then it should work as expected",
}

// ParseFallback scans free-form model output line by line for stories and
// Given/When/Then criteria. It never fails and always returns at least one story.
func ParseFallback(text string) []model.Story {
	var (
		stories []model.Story
		current *model.Story
	)

	closeCurrent := func() {
		if current == nil {
			return
		}
		if len(current.AcceptanceCriteria) == 0 {
			current.AcceptanceCriteria = []string{model.PlaceholderCriterion(current.Story)}
		}
		stories = append(stories, *current)
		current = nil
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "As a ") && (strings.Contains(line, "I want") || strings.Contains(line, "I need")):
			closeCurrent()
			s := model.NewStory(line)
			current = &s

		case isCriterion(line):
			if current != nil {
				current.AcceptanceCriteria = append(current.AcceptanceCriteria, line)
			}

		case isNumberedCriterion(line):
			remainder := stripNumbering(line)
			if current != nil && startsWithClause(remainder) {
				current.AcceptanceCriteria = append(current.AcceptanceCriteria, remainder)
			}
		}
	}
	closeCurrent()

	if len(stories) == 0 {
		return []model.Story{model.NewStory(DefaultStory, append([]string(nil), DefaultCriteria...)...)}
	}
	return stories
}

func isCriterion(line string) bool {
	return strings.HasPrefix(line, "Given ") && strings.Contains(line, "When ") && strings.Contains(line, "Then ")
}

func isNumberedCriterion(line string) bool {
	head := line
	if r := []rune(head); len(r) > 3 {
		head = string(r[:3])
	}
	if !strings.ContainsFunc(head, unicode.IsDigit) {
		return false
	}
	return strings.Contains(line, "Given ") || strings.Contains(line, "When ") || strings.Contains(line, "Then ")
}

// stripNumbering removes one leading "N. " or "N) " marker, N in 1..9.
func stripNumbering(line string) string {
	if len(line) >= 3 && line[0] >= '1' && line[0] <= '9' && (line[1] == '.' || line[1] == ')') && line[2] == ' ' {
		return strings.TrimSpace(line[3:])
	}
	return line
}

func startsWithClause(s string) bool {
	return strings.HasPrefix(s, "Given ") || strings.HasPrefix(s, "When ") || strings.HasPrefix(s, "Then ")
}
