package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/predmarkets/arbscan/internal/config"
	"github.com/predmarkets/arbscan/internal/domain"
)

const systemPrompt = `You compare prediction-market contracts from two venues.
Given two contract questions, reply with a single number between 0.0 and 1.0:
the probability that both contracts resolve on the same real-world event with
the same resolution criteria. Reply with the number only.`

// OpenAI is a chat-completion-backed comparator. Every failure is wrapped in
// ErrOracleUnavailable so the matcher can degrade instead of aborting.
type OpenAI struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewOpenAI creates the OpenAI comparator from oracle configuration.
func NewOpenAI(cfg config.OracleConfig) *OpenAI {
	return &OpenAI{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.ApiKey,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout.Duration,
		},
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Compare implements domain.Comparator.
func (o *OpenAI) Compare(ctx context.Context, a, b domain.Contract) (float64, error) {
	user := fmt.Sprintf("Contract A (%s): %s\nContract B (%s): %s", a.Venue, a.QuestionText, b.Venue, b.QuestionText)

	reqBody := chatRequest{
		Model: o.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0,
		MaxTokens:   8,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return 0, fmt.Errorf("oracle: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return 0, fmt.Errorf("oracle: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("oracle: %w: %v", domain.ErrOracleUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("oracle: %w: read response: %v", domain.ErrOracleUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, fmt.Errorf("oracle: %w: HTTP %d", domain.ErrOracleUnavailable, resp.StatusCode)
	}

	var cr chatResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return 0, fmt.Errorf("oracle: %w: decode response: %v", domain.ErrOracleUnavailable, err)
	}
	if cr.Error != nil {
		return 0, fmt.Errorf("oracle: %w: %s", domain.ErrOracleUnavailable, cr.Error.Message)
	}
	if len(cr.Choices) == 0 {
		return 0, fmt.Errorf("oracle: %w: empty response", domain.ErrOracleUnavailable)
	}

	return parseScore(cr.Choices[0].Message.Content)
}

// parseScore extracts the numeric confidence from the model reply and clamps
// it to [0,1].
func parseScore(content string) (float64, error) {
	s := strings.TrimSpace(content)
	s = strings.Trim(s, "`\"'")

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("oracle: %w: unparseable score %q", domain.ErrOracleUnavailable, content)
	}
	return math.Max(0, math.Min(1, v)), nil
}
