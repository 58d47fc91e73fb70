// Package summary asks an Ollama text-generation endpoint to describe a
// student in a few sentences.
//
// One Summarize call is one non-streaming POST to the generate endpoint.
// There is no retry: any transport failure, non-2xx status or unreadable
// body comes back as ErrGenerationUnavailable wrapping the cause.
package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrGenerationUnavailable is returned when the generation service
// cannot produce a summary.
var ErrGenerationUnavailable = errors.New("generation service unavailable")

// Defaults match a stock local Ollama install.
const (
	DefaultURL     = "http://localhost:11434/api/generate"
	DefaultModel   = "llama3"
	DefaultTimeout = 60 * time.Second
)

// maxErrorBody caps how much of a failed response is quoted in errors.
const maxErrorBody = 512

// Config is read once at startup and never changes.
type Config struct {
	URL     string
	Model   string
	Timeout time.Duration
}

// Client is safe for concurrent use.
type Client struct {
	config     Config
	httpClient *http.Client
}

// New returns a client for cfg; zero fields take the defaults.
func New(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		config: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Prompt builds the instruction sent for one student.
func Prompt(name string, age int, email string) string {
	var b strings.Builder
	b.WriteString("Write a short, warm third-person summary of the following student's profile. ")
	b.WriteString("Keep it natural and grounded, with no exaggeration, no flattery and no extra commentary. ")
	b.WriteString("Include all the details provided. ")
	b.WriteString("Do not generate the same response every time.\n\n")
	fmt.Fprintf(&b, "Name: %s\nAge: %d\nEmail: %s", name, age, email)
	return b.String()
}

// Summarize returns the generated summary with surrounding whitespace
// trimmed. A successful response without a "response" field yields "".
func (c *Client) Summarize(ctx context.Context, name string, age int, email string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:  c.config.Model,
		Prompt: Prompt(name, age, email),
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %w", ErrGenerationUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrGenerationUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %w", ErrGenerationUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return "", fmt.Errorf("%w: status %d: %s",
			ErrGenerationUnavailable, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return "", fmt.Errorf("%w: parse response: %w", ErrGenerationUnavailable, err)
	}

	return strings.TrimSpace(out.Response), nil
}
