package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/at-ishikawa/notekeeper/internal/inference"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
	logger           *zap.Logger
}

func NewClient(apiKey, model string, retryAttempts uint, logger *zap.Logger) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(30 * time.Second)

	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		httpClient:       client,
		model:            model,
		maxRetryAttempts: retryAttempts,
		logger:           logger,
	}
}

func (client Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client Client) GetModel() string {
	return client.model
}

type ChatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

type Choice struct {
	Index        int           `json:"index"`
	Message      ChoiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type ChoiceMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

const systemPrompt = `You write short activity reports for a personal note-taking app.

You receive a JSON object with the reporting period and a digest computed from the user's notes:
- "summary": a factual sentence-based summary
- "details.totalRecords": the number of notes in the period
- "details.categoryBreakdown": note counts per category
- "details.peakDate": the busiest date and its count

Rewrite the digest as two to four plain sentences addressed to the user.
Only use numbers present in the input. Do not invent categories, dates or trends.
Return plain text with no markdown and no surrounding quotes.`

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	if strings.Contains(errStr, "empty response content") {
		return true
	}
	// 5xx and rate limiting
	if strings.Contains(errStr, "response error 5") || strings.Contains(errStr, "response error 429") {
		return true
	}
	return false
}

// Narrate implements the inference.Narrator interface
func (client *Client) Narrate(ctx context.Context, req inference.NarrateRequest) (string, error) {
	var result string
	if err := retry.Do(
		func() error {
			narrative, err := client.narrate(ctx, req)
			if err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				client.logger.Warn("retrying narration", zap.String("period", req.Period), zap.Error(err))
				return err
			}
			result = narrative
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return "", err
	}
	return result, nil
}

func (client *Client) getRequestBody(req inference.NarrateRequest) (ChatCompletionRequest, error) {
	input, err := json.Marshal(req)
	if err != nil {
		return ChatCompletionRequest{}, fmt.Errorf("json.Marshal() > %w", err)
	}
	return ChatCompletionRequest{
		Model: client.model,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: string(input)},
		},
		Temperature: 0.3,
	}, nil
}

func (client *Client) narrate(ctx context.Context, req inference.NarrateRequest) (string, error) {
	requestBody, err := client.getRequestBody(req)
	if err != nil {
		return "", fmt.Errorf("getRequestBody > %w", err)
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return "", fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return "", fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := strings.TrimSpace(responseBody.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response content: %s", response.String())
	}
	client.logger.Debug("openai response content",
		zap.String("model", responseBody.Model),
		zap.Int("totalTokens", responseBody.Usage.TotalTokens),
	)
	return content, nil
}
