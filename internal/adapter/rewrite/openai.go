package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/leynos/frankie/internal/domain"
)

const (
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 60 * time.Second
)

// OpenAIClient implements the rewrite capability against an
// OpenAI-compatible chat-completions endpoint.
type OpenAIClient struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewOpenAIClient creates a rewrite client with the default model.
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{
		apiKey:  apiKey,
		model:   defaultModel,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// SetBaseURL sets a custom base URL (for testing or compatible servers).
func (c *OpenAIClient) SetBaseURL(url string) {
	c.baseURL = strings.TrimRight(url, "/")
}

// SetModel overrides the model identifier.
func (c *OpenAIClient) SetModel(model string) {
	c.model = model
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Rewrite sends the draft plus context to the model and returns the
// rewritten text.
func (c *OpenAIClient) Rewrite(ctx context.Context, request Request) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(request.Mode)},
			{Role: "user", Content: userPrompt(request)},
		},
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return "", domain.WrapError(domain.ErrAPI, err, "marshal rewrite request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", domain.WrapError(domain.ErrAPI, err, "build rewrite request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", domain.WrapError(domain.ErrNetwork, err, "call rewrite endpoint")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", domain.WrapError(domain.ErrNetwork, err, "read rewrite response")
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", domain.WrapError(domain.ErrAPI, err, "decode rewrite response")
	}

	if resp.StatusCode != http.StatusOK {
		message := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if decoded.Error != nil && decoded.Error.Message != "" {
			message = decoded.Error.Message
		}
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return "", domain.NewError(domain.ErrAuthentication, "%s", message)
		default:
			return "", domain.NewError(domain.ErrAPI, "%s", message)
		}
	}

	if len(decoded.Choices) == 0 {
		return "", domain.NewError(domain.ErrAPI, "rewrite response contained no choices")
	}
	return decoded.Choices[0].Message.Content, nil
}

func systemPrompt(mode Mode) string {
	if mode == ModeExpand {
		return "You expand terse code-review replies into complete, polite responses. " +
			"Preserve the author's intent and technical content. Reply with the rewritten text only."
	}
	return "You reword code-review replies for clarity and tone while preserving intent. " +
		"Reply with the rewritten text only."
}

func userPrompt(request Request) string {
	var builder strings.Builder

	if request.Context.Reviewer != nil {
		fmt.Fprintf(&builder, "Reviewer: %s\n", *request.Context.Reviewer)
	}
	if request.Context.FilePath != nil {
		location := *request.Context.FilePath
		if request.Context.LineNumber != nil {
			location = fmt.Sprintf("%s:%d", location, *request.Context.LineNumber)
		}
		fmt.Fprintf(&builder, "Location: %s\n", location)
	}
	if request.Context.CommentBody != nil && *request.Context.CommentBody != "" {
		fmt.Fprintf(&builder, "Review comment:\n%s\n\n", *request.Context.CommentBody)
	}

	fmt.Fprintf(&builder, "Draft reply to %s:\n%s", request.Mode.Label(), request.SourceText)
	return builder.String()
}

var _ Service = (*OpenAIClient)(nil)
