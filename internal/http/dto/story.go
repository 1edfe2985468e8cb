package dto

import (
	"fmt"
	"time"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

// RequirementsRequest is the body of the generate and analyze endpoints.
// Length checks happen in the service so they surface as 422.
type RequirementsRequest struct {
	Requirements string `json:"requirements"`
}

type GenerateResponse struct {
	UserStories []model.Story `json:"user_stories"`
	ID          string        `json:"id"`
	CreatedAt   time.Time     `json:"created_at"`
	Model       string        `json:"model"`
	Status      string        `json:"status"`
}

func ToGenerateResponse(b *model.Batch) GenerateResponse {
	return GenerateResponse{
		UserStories: b.Stories,
		ID:          b.ID,
		CreatedAt:   b.CreatedAt,
		Model:       b.Model,
		Status:      b.Status,
	}
}

type RequirementsAnalysis struct {
	WordCount           int     `json:"word_count"`
	SentenceCount       int     `json:"sentence_count"`
	EstimatedComplexity string  `json:"estimated_complexity"`
	ComplexityScore     float64 `json:"complexity_score"`
	FeatureIndicators   int     `json:"feature_indicators"`
}

type StoryEstimation struct {
	EstimatedMinStories int    `json:"estimated_min_stories"`
	EstimatedMaxStories int    `json:"estimated_max_stories"`
	RecommendedApproach string `json:"recommended_approach"`
}

type AnalyzeResponse struct {
	RequirementsAnalysis RequirementsAnalysis `json:"requirements_analysis"`
	StoryEstimation      StoryEstimation      `json:"story_estimation"`
	AnalysisTimestamp    time.Time            `json:"analysis_timestamp"`
	Status               string               `json:"status"`
}

func ToAnalyzeResponse(a *model.ComplexityAssessment, now time.Time) AnalyzeResponse {
	return AnalyzeResponse{
		RequirementsAnalysis: RequirementsAnalysis{
			WordCount:           a.WordCount,
			SentenceCount:       a.SentenceCount,
			EstimatedComplexity: a.ComplexityLabel,
			ComplexityScore:     a.ComplexityScore,
			FeatureIndicators:   a.FeatureIndicatorCount,
		},
		StoryEstimation: StoryEstimation{
			EstimatedMinStories: a.EstimatedMinStories,
			EstimatedMaxStories: a.EstimatedMaxStories,
			RecommendedApproach: fmt.Sprintf("Based on the complexity, expect %d-%d user stories",
				a.EstimatedMinStories, a.EstimatedMaxStories),
		},
		AnalysisTimestamp: now.UTC(),
		Status:            "success",
	}
}
