package model

const (
	ExportStatusSuccess = "success"
	ExportStatusPartial = "partial"
	ExportStatusFailed  = "failed"
)

type Project struct {
	ID             string  `json:"id"`
	Key            string  `json:"key"`
	Name           string  `json:"name"`
	ProjectTypeKey string  `json:"projectTypeKey,omitempty"`
	Lead           *string `json:"lead"`
	URL            string  `json:"url,omitempty"`
}

type IssueType struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IconURL     string `json:"iconUrl,omitempty"`
}

// TrackerIssue is an issue as read back from, or created in, an issue tracker.
type TrackerIssue struct {
	ID          string  `json:"id"`
	Key         string  `json:"key"`
	Summary     string  `json:"summary"`
	Description string  `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Assignee    *string `json:"assignee,omitempty"`
	URL         string  `json:"url,omitempty"`
}

type ExportRequest struct {
	Stories    []Story
	ProjectKey string
	CreateEpic bool
	EpicName   string
}

type ExportedStory struct {
	TrackerIssue
	StoryPoints int `json:"story_points"`
}

type ExportFailure struct {
	Index int    `json:"index"`
	Story string `json:"story"`
	Error string `json:"error"`
}

type ExportResult struct {
	TotalRequested int             `json:"total_requested"`
	TotalExported  int             `json:"total_exported"`
	Epic           *TrackerIssue   `json:"epic"`
	Stories        []ExportedStory `json:"stories"`
	Failed         []ExportFailure `json:"failed"`
	Status         string          `json:"status"`
}
