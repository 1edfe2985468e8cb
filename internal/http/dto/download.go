package dto

import (
	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/render"
)

// DownloadRequest accepts stories as bare strings or objects; model.Story
// normalizes both while decoding.
type DownloadRequest struct {
	UserStories []model.Story `json:"user_stories" binding:"required"`
	Format      string        `json:"format" binding:"required"`
}

type DownloadResponse struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
	MimeType string `json:"mime_type"`
	Encoding string `json:"encoding,omitempty"`
}

func ToDownloadResponse(doc *render.Document) DownloadResponse {
	return DownloadResponse{
		Content:  doc.Content,
		Filename: doc.Filename,
		Format:   doc.Format,
		MimeType: doc.MimeType,
		Encoding: doc.Encoding,
	}
}
