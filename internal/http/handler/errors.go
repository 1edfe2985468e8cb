package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/coastal7-sdlc/user-story-agent/internal/model"
	"github.com/coastal7-sdlc/user-story-agent/internal/service"
	"github.com/coastal7-sdlc/user-story-agent/internal/service/issue_tracker"
)

// respondBindError maps request decoding failures: malformed JSON is a 400,
// well-formed JSON with a wrongly typed field or failed validation is a 422.
func respondBindError(c *gin.Context, err error) {
	ctx := c.Request.Context()
	slog.WarnContext(ctx, "invalid request body", "error", err)

	var (
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
	)
	switch {
	case errors.Is(err, io.EOF):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Request body is empty"})
	case errors.Is(err, model.ErrEmptyStory):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "Each user story must have a non-empty 'story'"})
	case errors.As(err, &verrs):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationMessage(verrs)})
	case errors.As(err, &typeErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": typeErrorMessage(typeErr)})
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid JSON in request body"})
	}
}

func respondQueryError(c *gin.Context, err error) {
	slog.WarnContext(c.Request.Context(), "invalid query parameters", "error", err)

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationMessage(verrs)})
		return
	}
	c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "skip and limit must be integers"})
}

func validationMessage(verrs validator.ValidationErrors) string {
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("Missing '%s' field", jsonFieldName(fe.Field())))
		default:
			msgs = append(msgs, fmt.Sprintf("Invalid '%s' field", jsonFieldName(fe.Field())))
		}
	}
	return strings.Join(msgs, "; ")
}

func typeErrorMessage(err *json.UnmarshalTypeError) string {
	if err.Field == "requirements" {
		return "Requirements must be a non-empty string"
	}
	if err.Field == "" {
		return "Request body must be a JSON object"
	}
	return fmt.Sprintf("Invalid '%s' field", err.Field)
}

var fieldNames = map[string]string{
	"UserStories": "user_stories",
	"Stories":     "stories",
	"Format":      "format",
	"ProjectKey":  "project_key",
	"EpicName":    "epic_name",
	"Skip":        "skip",
	"Limit":       "limit",
}

func jsonFieldName(field string) string {
	if name, ok := fieldNames[field]; ok {
		return name
	}
	return strings.ToLower(field)
}

// respondError maps service errors onto status codes. fallback prefixes the
// message of errors the service layer did not classify.
func respondError(c *gin.Context, err error, fallback string) {
	ctx := c.Request.Context()

	var (
		validationErr  *service.ValidationError
		unavailableErr *service.ServiceUnavailableError
		generationErr  *service.GenerationError
		exportErr      *service.ExportError
		persistenceErr *service.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": validationErr.Message})
	case errors.As(err, &unavailableErr):
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"detail": fmt.Sprintf("%s. Please check your configuration.", capitalize(unavailableErr.Error())),
		})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, issue_tracker.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not found"})
	case errors.As(err, &exportErr):
		slog.ErrorContext(ctx, "export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"detail":        exportErr.Error(),
			"export_result": exportErr.Result,
		})
	case errors.As(err, &generationErr), errors.As(err, &persistenceErr):
		slog.ErrorContext(ctx, "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
	default:
		slog.ErrorContext(ctx, "request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("%s: %v", fallback, err)})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
