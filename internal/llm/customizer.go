package llm

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"

	"github.com/resumepilot/resumepilot/backend/go-services/internal/apperr"
	"github.com/resumepilot/resumepilot/backend/go-services/internal/config"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/logger"
	"github.com/resumepilot/resumepilot/backend/go-services/pkg/metrics"
)

// TruncationMarker is appended when the source text is cut to the budget.
const TruncationMarker = "\n\n[Content truncated due to length...]"

const systemPrompt = `You are an expert LaTeX resume assistant. Your task is to:

1. Analyze the LaTeX template structure
2. Extract relevant information from the user's PDF content
3. Follow user instructions for customization
4. Generate valid LaTeX code that maintains the template's formatting

Guidelines:
- Preserve all LaTeX commands and structure from the template
- Replace placeholder content with user's information
- Follow user instructions for emphasis and modifications
- Ensure output is valid LaTeX
- Maintain professional formatting
- If information doesn't fit a section, leave it empty

Return ONLY the complete LaTeX code, no explanations.`

// Customizer rewrites a template with the user's information.
type Customizer struct {
	client Client
	cfg    config.LLMConfig
}

func NewCustomizer(client Client, cfg config.LLMConfig) *Customizer {
	return &Customizer{client: client, cfg: cfg}
}

// TruncateSource cuts text to at most max characters and appends TruncationMarker when it did.
func TruncateSource(text string, max int) string {
	r := []rune(text)
	if max <= 0 || len(r) <= max {
		return text
	}
	return string(r[:max]) + TruncationMarker
}

// BuildUserPrompt assembles the user message sent with the system prompt.
func BuildUserPrompt(templateLatex, sourceText, instructions string) string {
	var sb strings.Builder
	sb.WriteString("Template LaTeX:\n")
	sb.WriteString(templateLatex)
	sb.WriteString("\n\nUser's Information:\n")
	sb.WriteString(sourceText)
	sb.WriteString("\n\nInstructions:\n")
	sb.WriteString(instructions)
	sb.WriteString("\n\nGenerate a customized LaTeX resume incorporating the user's information into the template structure.")
	return sb.String()
}

// Customize returns LaTeX produced from the template, the extracted text and the instructions.
func (c *Customizer) Customize(ctx context.Context, templateLatex, sourceText, instructions string) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	temp, maxTokens := c.cfg.Temperature, c.cfg.MaxTokens
	messages := []Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: BuildUserPrompt(templateLatex, TruncateSource(sourceText, c.cfg.MaxSourceChars), instructions)},
	}

	start := time.Now()
	out, err := c.client.ChatCompletion(ctx, messages, &GenerationParams{Temperature: &temp, MaxTokens: &maxTokens})
	if err != nil {
		mapped := classify(ctx, err)
		metrics.LLMRequestDuration.WithLabelValues(string(apperr.KindOf(mapped))).Observe(time.Since(start).Seconds())
		logger.Warnw("llm request failed", "kind", apperr.KindOf(mapped), "error", err)
		return "", mapped
	}
	metrics.LLMRequestDuration.WithLabelValues("ok").Observe(time.Since(start).Seconds())

	latex := stripFences(out)
	if latex == "" {
		return "", apperr.New(apperr.KindGenerationEmpty, "Failed to generate LaTeX content")
	}
	return latex, nil
}

func classify(ctx context.Context, err error) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.ContextLengthExceeded() {
			return apperr.Wrap(apperr.KindUpstreamContextOverflow, err,
				"Document content is too long. Please try with a shorter document or provide more specific instructions")
		}
		return apperr.Wrap(apperr.KindUpstream, err, "LLM provider error: %s", apiErr.Message)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return apperr.Wrap(apperr.KindUpstreamTimeout, err, "LLM provider timed out")
	}
	return apperr.Wrap(apperr.KindUpstream, err, "LLM provider error")
}

// stripFences removes a surrounding markdown code fence the model sometimes adds.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		return ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
