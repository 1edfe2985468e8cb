// Package render turns a list of stories into a downloadable document.
package render

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
)

const (
	FormatText     = "txt"
	FormatMarkdown = "md"
	FormatPDF      = "pdf"

	EncodingBase64 = "base64"
)

// ErrUnsupportedFormat is returned for any format other than txt, md or pdf.
var ErrUnsupportedFormat = errors.New("Format must be 'txt', 'md', or 'pdf'") //nolint:staticcheck // surfaced to clients verbatim

// Document is a rendered download. Binary formats carry base64 content and set Encoding.
type Document struct {
	Content  string `json:"content"`
	Filename string `json:"filename"`
	Format   string `json:"format"`
	MimeType string `json:"mime_type"`
	Encoding string `json:"encoding,omitempty"`
}

type renderer func(stories []model.Story, now time.Time) (string, error)

var formats = map[string]struct {
	mimeType string
	encoding string
	render   renderer
}{
	FormatText:     {mimeType: "text/plain", render: renderText},
	FormatMarkdown: {mimeType: "text/markdown", render: renderMarkdown},
	FormatPDF:      {mimeType: "application/pdf", encoding: EncodingBase64, render: renderPDF},
}

// Supported reports whether format (case-insensitive) can be rendered.
func Supported(format string) bool {
	_, ok := formats[strings.ToLower(strings.TrimSpace(format))]
	return ok
}

// Render produces the document for format. now stamps the filename and the
// generated-on line and is converted to UTC.
func Render(format string, stories []model.Story, now time.Time) (*Document, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	f, ok := formats[format]
	if !ok {
		return nil, ErrUnsupportedFormat
	}

	now = now.UTC()
	content, err := f.render(stories, now)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", format, err)
	}

	return &Document{
		Content:  content,
		Filename: Filename(format, now),
		Format:   format,
		MimeType: f.mimeType,
		Encoding: f.encoding,
	}, nil
}

func Filename(format string, now time.Time) string {
	return fmt.Sprintf("user_stories_%s.%s", now.UTC().Format("20060102_150405"), format)
}

func generatedOn(now time.Time) string {
	return "Generated on: " + now.Format("2006-01-02 15:04:05") + " UTC"
}
