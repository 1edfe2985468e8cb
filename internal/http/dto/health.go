package dto

import "time"

type RootResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Health  string `json:"health"`
	Status  string `json:"status"`
}

type HealthResponse struct {
	Status       string    `json:"status"`
	API          string    `json:"api"`
	Model        string    `json:"model,omitempty"`
	Store        string    `json:"store,omitempty"`
	StoreBackend string    `json:"store_backend,omitempty"`
	MongoDB      string    `json:"mongodb,omitempty"`
	Jira         string    `json:"jira,omitempty"`
	GitLab       string    `json:"gitlab,omitempty"`
	Error        string    `json:"error,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}
