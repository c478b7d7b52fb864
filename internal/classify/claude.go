package classify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"github.com/untoldecay/flowai/internal/types"
)

const (
	defaultModel   = "claude-3-5-haiku-20241022"
	maxRetries     = 3
	initialBackoff = 1 * time.Second
)

// ErrAPIKeyRequired is returned when an API key is needed but not provided.
var ErrAPIKeyRequired = errors.New("API key required")

// ClaudeAnalyzer classifies with the Anthropic API instead of the keyword
// tables. It satisfies the same Analyzer contract, so stores and commands
// do not care which engine produced a proposal.
type ClaudeAnalyzer struct {
	client         anthropic.Client
	model          anthropic.Model
	templates      []types.SOPTemplate
	taskTemplate   *template.Template
	ticketTemplate *template.Template
	maxRetries     int
	initialBackoff time.Duration
	now            func() time.Time
	newID          func() string
}

// NewClaudeAnalyzer creates a Claude-backed analyzer. Env var
// ANTHROPIC_API_KEY takes precedence over the explicit apiKey; an empty
// model selects defaultModel.
func NewClaudeAnalyzer(apiKey, model string, templates []types.SOPTemplate) (*ClaudeAnalyzer, error) {
	envKey := os.Getenv("ANTHROPIC_API_KEY")
	if envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY environment variable or provide via config", ErrAPIKeyRequired)
	}

	taskTmpl, err := template.New("task").Parse(taskPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse task template: %w", err)
	}
	ticketTmpl, err := template.New("ticket").Parse(ticketPromptTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse ticket template: %w", err)
	}

	if model == "" {
		model = defaultModel
	}

	return &ClaudeAnalyzer{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:          anthropic.Model(model),
		templates:      templates,
		taskTemplate:   taskTmpl,
		ticketTemplate: ticketTmpl,
		maxRetries:     maxRetries,
		initialBackoff: initialBackoff,
		now:            time.Now,
		newID:          uuid.NewString,
	}, nil
}

type taskPromptData struct {
	Description   string
	TemplateNames []string
}

type ticketPromptData struct {
	Title       string
	Description string
}

// SuggestTask asks the model for a priority and template choice, then fills
// in steps and the due date locally so the proposal shape matches the rule
// engine exactly.
func (c *ClaudeAnalyzer) SuggestTask(ctx context.Context, description string) (TaskSuggestion, error) {
	var names []string
	for _, t := range c.templates {
		names = append(names, t.Name)
	}

	var buf strings.Builder
	if err := c.taskTemplate.Execute(&buf, taskPromptData{Description: description, TemplateNames: names}); err != nil {
		return TaskSuggestion{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	resp, err := c.callWithRetry(ctx, buf.String())
	if err != nil {
		return TaskSuggestion{}, err
	}

	var parsed struct {
		Priority string `json:"priority"`
		Template string `json:"template"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp)), &parsed); err != nil {
		return TaskSuggestion{}, fmt.Errorf("unparseable model response: %w", err)
	}

	s := TaskSuggestion{
		Priority:         normalizeTaskPriority(parsed.Priority),
		SuggestedDueDate: c.now().Add(suggestedDueOffset),
	}
	for i := range c.templates {
		if c.templates[i].Name == parsed.Template {
			tmpl := c.templates[i]
			s.SuggestedSOP = &tmpl
			for _, step := range tmpl.Steps {
				s.EstimatedSteps = append(s.EstimatedSteps, types.TaskStep{ID: c.newID(), Title: step})
			}
			break
		}
	}
	return s, nil
}

// AnalyzeTicket asks the model for a category, priority, and tag set.
func (c *ClaudeAnalyzer) AnalyzeTicket(ctx context.Context, title, description string) (TicketAnalysis, error) {
	var buf strings.Builder
	if err := c.ticketTemplate.Execute(&buf, ticketPromptData{Title: title, Description: description}); err != nil {
		return TicketAnalysis{}, fmt.Errorf("failed to render prompt: %w", err)
	}

	resp, err := c.callWithRetry(ctx, buf.String())
	if err != nil {
		return TicketAnalysis{}, err
	}

	var parsed struct {
		Category string   `json:"category"`
		Priority string   `json:"priority"`
		Tags     []string `json:"tags"`
	}
	if err := json.Unmarshal([]byte(extractJSON(resp)), &parsed); err != nil {
		return TicketAnalysis{}, fmt.Errorf("unparseable model response: %w", err)
	}

	return TicketAnalysis{
		Category: normalizeCategory(parsed.Category),
		Priority: normalizeTicketPriority(parsed.Priority),
		Tags:     parsed.Tags,
	}, nil
}

func (c *ClaudeAnalyzer) callWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 512,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		message, err := c.client.Messages.New(ctx, params)

		if err == nil {
			if len(message.Content) > 0 {
				content := message.Content[0]
				if content.Type == "text" {
					return content.Text, nil
				}
				return "", fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type)
			}
			return "", fmt.Errorf("unexpected response format: no content blocks")
		}

		lastErr = err

		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		if !isRetryable(err) {
			return "", fmt.Errorf("non-retryable error: %w", err)
		}
	}

	return "", fmt.Errorf("failed after %d retries: %w", c.maxRetries+1, lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		statusCode := apiErr.StatusCode
		if statusCode == 429 || statusCode >= 500 {
			return true
		}
		return false
	}

	return false
}

// extractJSON strips markdown code fences the model sometimes wraps its
// JSON answer in.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if start := strings.Index(s, "{"); start >= 0 {
		if end := strings.LastIndex(s, "}"); end > start {
			return s[start : end+1]
		}
	}
	return s
}

func normalizeTaskPriority(s string) types.Priority {
	switch types.Priority(strings.ToLower(strings.TrimSpace(s))) {
	case types.PriorityLow:
		return types.PriorityLow
	case types.PriorityHigh, types.PriorityUrgent:
		return types.PriorityHigh
	default:
		return types.PriorityMedium
	}
}

func normalizeTicketPriority(s string) types.Priority {
	switch p := types.Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case types.PriorityLow, types.PriorityHigh, types.PriorityUrgent:
		return p
	default:
		return types.PriorityMedium
	}
}

func normalizeCategory(s string) types.Category {
	switch c := types.Category(strings.ToLower(strings.TrimSpace(s))); c {
	case types.CategoryBug, types.CategoryFeature, types.CategorySupport, types.CategoryBilling:
		return c
	default:
		return types.CategoryOther
	}
}

const taskPromptTemplate = `You are triaging a captured work item for a task board.

Description:
{{.Description}}

Available SOP templates:
{{range .TemplateNames}}- {{.}}
{{end}}
Respond with ONLY a JSON object in this exact shape, no prose:

{"priority": "low|medium|high", "template": "<one of the template names, or empty string>"}`

const ticketPromptTemplate = `You are triaging an incoming customer support ticket.

Title: {{.Title}}

Description:
{{.Description}}

Respond with ONLY a JSON object in this exact shape, no prose:

{"category": "bug|feature|billing|support|other", "priority": "low|medium|high|urgent", "tags": ["mobile", "authentication", "ui", "performance"]}

Only include tags that clearly apply; tags may be empty.`
