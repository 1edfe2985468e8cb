package story

import (
	"math"
	"strings"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

// FeatureIndicators are the domain terms whose presence raises the complexity score.
var FeatureIndicators = []string{
	"api", "database", "authentication", "authorization", "integration",
	"workflow", "reporting", "dashboard", "notification", "payment",
	"search", "filter", "export", "import",
}

type storyRange struct {
	min, max int
	label    string
}

var complexityBuckets = map[float64]storyRange{
	1: {2, 4, "Simple"},
	2: {4, 6, "Medium"},
	3: {6, 10, "Complex"},
	4: {8, 15, "Very Complex"},
}

// A half-point boost lands between bucket keys and resolves to this range.
var defaultBucket = storyRange{4, 8, "Medium"}

// Estimate scores requirements text and suggests how many stories it should yield.
func Estimate(requirements string) model.ComplexityAssessment {
	words := len(strings.Fields(requirements))

	sentences := 0
	for _, segment := range strings.Split(requirements, ".") {
		if strings.TrimSpace(segment) != "" {
			sentences++
		}
	}

	var score float64
	switch {
	case words < 50:
		score = 1
	case words < 150:
		score = 2
	case words < 300:
		score = 3
	default:
		score = 4
	}

	lower := strings.ToLower(requirements)
	indicators := 0
	for _, term := range FeatureIndicators {
		if strings.Contains(lower, term) {
			indicators++
		}
	}

	switch {
	case indicators > 5:
		score = math.Min(4, score+1)
	case indicators > 2:
		score = math.Min(4, score+0.5)
	}

	bucket, ok := complexityBuckets[score]
	if !ok {
		bucket = defaultBucket
	}

	return model.ComplexityAssessment{
		WordCount:             words,
		SentenceCount:         sentences,
		ComplexityScore:       score,
		ComplexityLabel:       bucket.label,
		FeatureIndicatorCount: indicators,
		EstimatedMinStories:   bucket.min,
		EstimatedMaxStories:   bucket.max,
	}
}
