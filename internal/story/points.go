package story

import (
	"unicode/utf8"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

const maxStoryPoints = 13

// EstimatePoints gives a rough story-point value from the number of acceptance
// criteria and the length of the story text.
func EstimatePoints(s model.Story) int {
	var points int
	switch n := len(s.EffectiveCriteria()); {
	case n <= 2:
		points = 3
	case n <= 4:
		points = 5
	case n <= 6:
		points = 7
	default:
		points = 9
	}

	length := utf8.RuneCountInString(s.Story)
	if length > 200 {
		points++
	}
	if length > 400 {
		points++
	}

	return min(points, maxStoryPoints)
}
