package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/coastal7-sdlc/user-story-agent/common/llm"
)

const chatCompletionBody = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "test-model",
	"choices": [{
		"index": 0,
		"message": {"role": "assistant", "content": "[{\"story\": \"As a user, I want x\", \"acceptance_criteria\": []}]"},
		"finish_reason": "stop"
	}],
	"usage": {"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19}
}`

const emptyChatCompletionBody = `{
	"id": "chatcmpl-2",
	"object": "chat.completion",
	"created": 1700000000,
	"model": "test-model",
	"choices": [],
	"usage": {"prompt_tokens": 12, "completion_tokens": 0, "total_tokens": 12}
}`

const anthropicMessageBody = `{
	"id": "msg_1",
	"type": "message",
	"role": "assistant",
	"model": "test-model",
	"content": [{"type": "text", "text": "hello from claude"}],
	"stop_reason": "end_turn",
	"stop_sequence": null,
	"usage": {"input_tokens": 9, "output_tokens": 3}
}`

var _ = Describe("New", func() {
	It("requires an API key", func() {
		_, err := llm.New(llm.Config{Provider: llm.ProviderOpenAI})
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
	})

	It("rejects unknown providers", func() {
		_, err := llm.New(llm.Config{Provider: "cohere", APIKey: "k"})
		Expect(err).To(MatchError(ContainSubstring("unsupported LLM provider")))
	})

	It("defaults to the OpenAI-compatible provider", func() {
		c, err := llm.New(llm.Config{APIKey: "k", Model: "m"})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Provider()).To(Equal(llm.ProviderOpenAI))
		Expect(c.Model()).To(Equal("m"))
	})
})

var _ = Describe("OpenAI client", func() {
	var (
		server   *httptest.Server
		calls    atomic.Int32
		lastBody map[string]any
		lastHdr  http.Header
		status   int
		payload  string
	)

	BeforeEach(func() {
		calls.Store(0)
		status = http.StatusOK
		payload = chatCompletionBody
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			lastHdr = r.Header.Clone()
			body, _ := io.ReadAll(r.Body)
			lastBody = map[string]any{}
			_ = json.Unmarshal(body, &lastBody)

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			if status == http.StatusOK {
				_, _ = w.Write([]byte(payload))
			} else {
				_, _ = w.Write([]byte(`{"error": {"message": "boom", "type": "server_error"}}`))
			}
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func() llm.Client {
		c, err := llm.New(llm.Config{
			Provider: llm.ProviderOpenAI,
			APIKey:   "test-key",
			BaseURL:  server.URL + "/v1/",
			Model:    "test-model",
			Headers: map[string]string{
				"HTTP-Referer": "http://localhost:3000",
				"X-Title":      "User Story Creation Agent",
			},
		})
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("sends system and user messages with sampling settings and attribution headers", func() {
		resp, err := newClient().Complete(context.Background(), llm.Request{
			SystemPrompt: "You are a professional software analyst.",
			UserPrompt:   "Build a login page",
			MaxTokens:    2000,
			Temperature:  llm.Temp(0.7),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Content).To(ContainSubstring("As a user, I want x"))
		Expect(resp.FinishReason).To(Equal("stop"))
		Expect(resp.PromptTokens).To(Equal(12))
		Expect(resp.CompletionTokens).To(Equal(7))

		Expect(lastBody["model"]).To(Equal("test-model"))
		Expect(lastBody["temperature"]).To(BeNumerically("~", 0.7))
		Expect(lastBody["max_tokens"]).To(BeNumerically("==", 2000))
		messages, ok := lastBody["messages"].([]any)
		Expect(ok).To(BeTrue())
		Expect(messages).To(HaveLen(2))
		Expect(lastBody).NotTo(HaveKey("response_format"))

		Expect(lastHdr.Get("Authorization")).To(Equal("Bearer test-key"))
		Expect(lastHdr.Get("HTTP-Referer")).To(Equal("http://localhost:3000"))
		Expect(lastHdr.Get("X-Title")).To(Equal("User Story Creation Agent"))
	})

	It("requests structured output when a schema is given", func() {
		type out struct {
			Stories []string `json:"stories"`
		}
		_, err := newClient().Complete(context.Background(), llm.Request{
			UserPrompt: "Build a login page",
			SchemaName: "stories",
			Schema:     llm.GenerateSchema[out](),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(lastBody).To(HaveKey("response_format"))
	})

	It("makes exactly one request on a server error", func() {
		status = http.StatusInternalServerError
		_, err := newClient().Complete(context.Background(), llm.Request{UserPrompt: "x"})
		Expect(err).To(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(1)))
		Expect(llm.IsRetryable(context.Background(), err)).To(BeTrue())
	})

	It("treats client errors as not retryable", func() {
		status = http.StatusUnauthorized
		_, err := newClient().Complete(context.Background(), llm.Request{UserPrompt: "x"})
		Expect(err).To(HaveOccurred())
		Expect(llm.IsRetryable(context.Background(), err)).To(BeFalse())
	})

	It("retries retryable failures when asked to", func() {
		status = http.StatusServiceUnavailable
		_, err := llm.CompleteWithRetry(context.Background(), newClient(), llm.Request{UserPrompt: "x"}, 1)
		Expect(err).To(HaveOccurred())
		Expect(calls.Load()).To(Equal(int32(2)))
	})

	It("does not retry a completion without choices", func() {
		payload = emptyChatCompletionBody
		_, err := llm.CompleteWithRetry(context.Background(), newClient(), llm.Request{UserPrompt: "x"}, 2)
		Expect(err).To(MatchError(llm.ErrEmptyCompletion))
		Expect(calls.Load()).To(Equal(int32(1)))
	})
})

var _ = Describe("Anthropic client", func() {
	var (
		server   *httptest.Server
		lastBody map[string]any
	)

	BeforeEach(func() {
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.HasSuffix(r.URL.Path, "/v1/messages") {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			body, _ := io.ReadAll(r.Body)
			lastBody = map[string]any{}
			_ = json.Unmarshal(body, &lastBody)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(anthropicMessageBody))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	It("returns the concatenated text and maps the stop reason", func() {
		c, err := llm.New(llm.Config{
			Provider: llm.ProviderAnthropic,
			APIKey:   "test-key",
			BaseURL:  server.URL + "/",
			Model:    "test-model",
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Provider()).To(Equal(llm.ProviderAnthropic))

		resp, err := c.Complete(context.Background(), llm.Request{
			SystemPrompt: "system",
			UserPrompt:   "user",
			Schema:       map[string]any{"type": "array"},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Content).To(Equal("hello from claude"))
		Expect(resp.FinishReason).To(Equal("stop"))
		Expect(resp.PromptTokens).To(Equal(9))

		system, ok := lastBody["system"].([]any)
		Expect(ok).To(BeTrue())
		Expect(system).To(HaveLen(1))
		text := system[0].(map[string]any)["text"].(string)
		Expect(strings.HasPrefix(text, "system")).To(BeTrue())
		Expect(text).To(ContainSubstring(`"type":"array"`))
	})
})

var _ = Describe("IsRetryable", func() {
	It("does not retry cancelled contexts", func() {
		Expect(llm.IsRetryable(context.Background(), context.Canceled)).To(BeFalse())
	})

	It("retries plain network errors", func() {
		Expect(llm.IsRetryable(context.Background(), errors.New("connection reset"))).To(BeTrue())
	})

	It("does not retry empty completions", func() {
		err := fmt.Errorf("no text content in response: %w", llm.ErrEmptyCompletion)
		Expect(llm.IsRetryable(context.Background(), err)).To(BeFalse())
	})

	It("ignores nil", func() {
		Expect(llm.IsRetryable(context.Background(), nil)).To(BeFalse())
	})
})
