// Package digest turns the final filtered event list into a human-readable
// summary. The primary path asks an OpenAI chat model to clean up and
// format the list; a deterministic plain-text formatter covers runs without
// an API key and any model failure.
package digest

import (
	"context"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"

	"github.com/charliewiggs/den/internal/event"
)

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.1
	defaultMaxTokens   = 1800

	// maxListed bounds both the plain listing and the events sent to the
	// model.
	maxListed = 40
)

const systemPrompt = "You clean up and format lists of local public events. " +
	"You are given events already filtered to the area and date window; do not " +
	"add, invent, or drop events. Return a readable plain-text digest grouped " +
	"by day, one line per event with time, title, and venue."

// Area describes the neighborhood the digest is for.
type Area struct {
	Neighborhood string
	City         string
	State        string
}

// Request carries everything the formatter needs for one digest.
type Request struct {
	Area        Area
	WindowStart string
	WindowEnd   string
	Events      []*event.Event
}

// Client formats digests through the OpenAI chat-completion API.
type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
}

// New creates a digest client. The API key must be non-empty.
func New(apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &Client{
		api:         openai.NewClient(apiKey),
		model:       defaultModel,
		temperature: defaultTemperature,
		maxTokens:   defaultMaxTokens,
	}, nil
}

// Summarize asks the model for a formatted digest of the events. The events
// themselves are already final; the model only formats them.
func (c *Client) Summarize(ctx context.Context, req Request) (string, error) {
	if len(req.Events) == 0 {
		return FormatPlain(req), nil
	}

	user, err := buildUserPrompt(req)
	if err != nil {
		return "", fmt.Errorf("building prompt: %w", err)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", fmt.Errorf("requesting digest: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	text := stripFences(resp.Choices[0].Message.Content)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty digest text")
	}
	return text, nil
}

// buildUserPrompt serializes the area, window, and events for the model.
func buildUserPrompt(req Request) (string, error) {
	events := req.Events
	if len(events) > maxListed {
		events = events[:maxListed]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Area: %s, %s, %s\n", req.Area.Neighborhood, req.Area.City, req.Area.State)
	fmt.Fprintf(&b, "Date window: %s to %s\n\n", req.WindowStart, req.WindowEnd)
	b.WriteString("Events (JSON, one per line):\n")

	for _, evt := range events {
		line, err := json.Marshal(evt)
		if err != nil {
			return "", err
		}
		b.Write(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

// stripFences removes a wrapping markdown code fence if the model added one.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// FormatPlain renders the deterministic fallback digest: a numbered listing
// of up to maxListed events with start and venue, the shape the crawl
// prints when no model is available.
func FormatPlain(req Request) string {
	if len(req.Events) == 0 {
		return fmt.Sprintf("No events found for %s, %s in the next window.", req.Area.Neighborhood, req.Area.City)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Events for %s, %s (%s to %s):\n", req.Area.Neighborhood, req.Area.City, req.WindowStart, req.WindowEnd)

	for i, evt := range req.Events {
		if i >= maxListed {
			fmt.Fprintf(&b, "... and %d more\n", len(req.Events)-maxListed)
			break
		}
		when := evt.Start
		if when == "" {
			when = "TBD"
		}
		where := evt.Venue
		if where == "" {
			where = evt.Address
		}
		if where == "" {
			where = "TBD"
		}
		fmt.Fprintf(&b, "%2d. %s | %s | %s\n", i+1, evt.Title, when, where)
	}
	return b.String()
}
