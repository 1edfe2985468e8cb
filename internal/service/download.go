package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/render"
)

type DownloadService interface {
	Download(ctx context.Context, format string, stories []model.Story) (*render.Document, error)
}

type downloadService struct {
	now func() time.Time
}

func NewDownloadService() DownloadService {
	return &downloadService{now: time.Now}
}

func (s *downloadService) Download(ctx context.Context, format string, stories []model.Story) (*render.Document, error) {
	if len(stories) == 0 {
		return nil, &ValidationError{Message: "User stories must be a non-empty list"}
	}

	doc, err := render.Render(format, stories, s.now())
	if err != nil {
		if errors.Is(err, render.ErrUnsupportedFormat) {
			return nil, &ValidationError{Message: err.Error()}
		}
		slog.ErrorContext(ctx, "failed to render download", "error", err, "format", format)
		return nil, err
	}

	slog.InfoContext(ctx, "rendered user stories",
		"format", doc.Format,
		"stories", len(stories),
		"filename", doc.Filename)
	return doc, nil
}
