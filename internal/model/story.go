package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// BatchStatusSuccess is the only status a generated batch carries.
const BatchStatusSuccess = "success"

// ErrEmptyStory is returned when a story record carries no story text.
var ErrEmptyStory = errors.New("story text is required")

// Story is a single user story with its acceptance criteria.
// AcceptanceCriteria may be empty; consumers use EffectiveCriteria.
type Story struct {
	Story              string   `json:"story" bson:"story"`
	AcceptanceCriteria []string `json:"acceptance_criteria" bson:"acceptance_criteria"`
}

func NewStory(text string, criteria ...string) Story {
	if criteria == nil {
		criteria = []string{}
	}
	return Story{Story: text, AcceptanceCriteria: criteria}
}

// PlaceholderCriterion is the criterion substituted for a story without any.
func PlaceholderCriterion(story string) string {
	return fmt.Sprintf("Given the user story '%s', When implemented correctly, Then the feature should work as expected", story)
}

// EffectiveCriteria returns the story's criteria, or exactly one placeholder
// criterion when it has none.
func (s Story) EffectiveCriteria() []string {
	if len(s.AcceptanceCriteria) == 0 {
		return []string{PlaceholderCriterion(s.Story)}
	}
	return s.AcceptanceCriteria
}

type storyJSON struct {
	Story              string   `json:"story"`
	AcceptanceCriteria []string `json:"acceptance_criteria"`
}

// MarshalJSON always emits acceptance_criteria as an array.
func (s Story) MarshalJSON() ([]byte, error) {
	out := storyJSON(s)
	if out.AcceptanceCriteria == nil {
		out.AcceptanceCriteria = []string{}
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts either a bare string, which becomes a story without
// criteria, or an object with a non-blank "story" field. Blank criteria are dropped.
func (s *Story) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return ErrEmptyStory
		}
		*s = NewStory(text)
		return nil
	}

	var raw storyJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	text := strings.TrimSpace(raw.Story)
	if text == "" {
		return ErrEmptyStory
	}

	criteria := make([]string, 0, len(raw.AcceptanceCriteria))
	for _, c := range raw.AcceptanceCriteria {
		if c = strings.TrimSpace(c); c != "" {
			criteria = append(criteria, c)
		}
	}
	*s = Story{Story: text, AcceptanceCriteria: criteria}
	return nil
}

// Batch is one generation result. It is created once and never mutated.
type Batch struct {
	ID           string    `json:"id"`
	Stories      []Story   `json:"user_stories"`
	Requirements string    `json:"requirements"`
	CreatedAt    time.Time `json:"created_at"`
	Model        string    `json:"model"`
	Status       string    `json:"status"`
}

// NewBatch stamps created_at in UTC at millisecond precision so every store
// round-trips it exactly.
func NewBatch(stories []Story, requirements, model string, now time.Time) *Batch {
	return &Batch{
		Stories:      stories,
		Requirements: requirements,
		CreatedAt:    now.UTC().Truncate(time.Millisecond),
		Model:        model,
		Status:       BatchStatusSuccess,
	}
}

// ComplexityAssessment is derived from requirements text and never persisted.
type ComplexityAssessment struct {
	WordCount             int     `json:"word_count"`
	SentenceCount         int     `json:"sentence_count"`
	ComplexityScore       float64 `json:"complexity_score"`
	ComplexityLabel       string  `json:"complexity_label"`
	FeatureIndicatorCount int     `json:"feature_indicator_count"`
	EstimatedMinStories   int     `json:"estimated_min_stories"`
	EstimatedMaxStories   int     `json:"estimated_max_stories"`
}
