package suggest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"rowmatch/internal/config"
	"rowmatch/internal/logger"

	"github.com/google/generative-ai-go/genai"
	"github.com/joho/godotenv"
	"google.golang.org/api/option"
)

var ErrNoHeaders = errors.New("both source and lookup headers must be provided")

// generator is the part of *genai.GenerativeModel the AI client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// AIClient asks Gemini which source and lookup headers hold the same key.
type AIClient struct {
	client        *genai.Client
	model         generator
	timeout       time.Duration
	minConfidence float64
}

func NewAIClient(ctx context.Context, apiKey string, cfg config.SuggestConfig) (*AIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		logger.Error("Failed to create Gemini client", "error", err)
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.Model)
	model.SetTemperature(0.1)

	logger.Info("AI client initialized", "model", cfg.Model)

	return &AIClient{
		client:        client,
		model:         model,
		timeout:       time.Duration(cfg.TimeoutSeconds) * time.Second,
		minConfidence: cfg.MinConfidence,
	}, nil
}

func (c *AIClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Suggest sends both header lists in one request and returns the pairs the
// model is confident about.
func (c *AIClient) Suggest(ctx context.Context, source, lookup []string) ([]Pair, error) {
	if len(source) == 0 || len(lookup) == 0 {
		return nil, ErrNoHeaders
	}

	prompt := buildPrompt(source, lookup)
	logger.Debug("AI prompt", "content", prompt)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	type apiResult struct {
		resp *genai.GenerateContentResponse
		err  error
	}

	resultChan := make(chan apiResult, 1)
	started := time.Now()

	go func() {
		resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
		resultChan <- apiResult{resp: resp, err: err}
	}()

	select {
	case result := <-resultChan:
		if result.err != nil {
			logger.Error("Gemini API request failed", "error", result.err, "duration", time.Since(started))
			return nil, fmt.Errorf("failed to generate AI response: %w", result.err)
		}
		logger.Info("Received response from Gemini API", "duration", time.Since(started))

		text, err := responseText(result.resp)
		if err != nil {
			return nil, err
		}
		logger.Debug("AI response", "content", text)
		return ParseResponse(text, c.minConfidence), nil

	case <-ctx.Done():
		logger.Error("Gemini API request timed out", "timeout", c.timeout)
		return nil, fmt.Errorf("API request timed out after %v: %w", c.timeout, ctx.Err())
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no response generated from AI")
	}

	var b strings.Builder
	for i, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		} else {
			logger.Warn("Non-text part in response", "index", i, "type", fmt.Sprintf("%T", part))
		}
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("no response generated from AI")
	}
	return b.String(), nil
}

func buildPrompt(source, lookup []string) string {
	var b strings.Builder
	b.WriteString(`You are helping to match rows between two spreadsheets.

TASK: For each source column, name the lookup column that holds the same kind of key value (IDs, names, departments, codes), or "NO_MATCH".

SOURCE COLUMNS:
`)
	for _, col := range source {
		fmt.Fprintf(&b, "- %s\n", col)
	}

	b.WriteString(`
LOOKUP COLUMNS:
`)
	for _, col := range lookup {
		fmt.Fprintf(&b, "- %s\n", col)
	}

	b.WriteString(`
INSTRUCTIONS:
1. Only suggest pairs you are confident about (>80% certainty)
2. Consider meaning, not just spelling; headers may be Chinese or English
3. Pair each source column with AT MOST ONE lookup column
4. If uncertain, use "NO_MATCH"

OUTPUT FORMAT (one line per source column, nothing else):
SourceColumn|LookupColumn|Confidence

EXAMPLES:
部门|部门名称|0.95
Patient ID|病人编号|0.90
备注|NO_MATCH|0.00
`)
	return b.String()
}

// ParseResponse reads Source|Lookup|Confidence lines. NO_MATCH lines, lines
// below minConfidence and malformed lines are dropped.
func ParseResponse(text string, minConfidence float64) []Pair {
	var pairs []Pair
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.Trim(strings.TrimSpace(line), "`")
		if line == "" || strings.HasPrefix(line, "SourceColumn|") {
			continue
		}

		parts := strings.Split(line, "|")
		if len(parts) != 3 {
			logger.Debug("Skipping line", "reason", "invalid format", "content", line)
			continue
		}

		source := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(parts[0]), "- "))
		lookup := strings.TrimSpace(parts[1])
		confidence, err := strconv.ParseFloat(strings.TrimSpace(parts[2]), 64)
		if err != nil {
			confidence = 0
		}

		if source == "" || lookup == "" || lookup == "NO_MATCH" || confidence < minConfidence {
			continue
		}

		pairs = append(pairs, Pair{Source: source, Lookup: lookup, Confidence: confidence, Origin: OriginAI})
	}
	return pairs
}

// APIKey returns GEMINI_API_KEY, or "" when it is not set. A .env file in
// the working directory is read first; variables already set win.
func APIKey() string {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to read .env", "error", err)
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		logger.Debug("GEMINI_API_KEY environment variable not set")
	}
	return apiKey
}
