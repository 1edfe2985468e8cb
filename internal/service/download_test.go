package service_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/service"
)

var _ = Describe("DownloadService", func() {
	var svc service.DownloadService

	BeforeEach(func() {
		svc = service.NewDownloadService()
	})

	It("renders the requested format", func() {
		doc, err := svc.Download(context.Background(), "md", []model.Story{model.NewStory("As a user, I want X")})
		Expect(err).NotTo(HaveOccurred())
		Expect(doc.Format).To(Equal("md"))
		Expect(doc.Filename).To(MatchRegexp(`^user_stories_\d{8}_\d{6}\.md$`))
	})

	It("requires at least one story", func() {
		_, err := svc.Download(context.Background(), "txt", nil)
		var vErr *service.ValidationError
		Expect(errors.As(err, &vErr)).To(BeTrue())
		Expect(vErr.Message).To(Equal("User stories must be a non-empty list"))
	})

	It("reports unsupported formats as validation errors", func() {
		_, err := svc.Download(context.Background(), "docx", []model.Story{model.NewStory("As a user, I want X")})
		var vErr *service.ValidationError
		Expect(errors.As(err, &vErr)).To(BeTrue())
		Expect(vErr.Message).To(Equal("Format must be 'txt', 'md', or 'pdf'"))
	})
})
