package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"resty.dev/v3"

	"github.com/lexikid/lexikid/internal/gateway"
)

type Client struct {
	httpClient       *resty.Client
	model            string
	speechModel      string
	speechVoice      string
	maxRetryAttempts uint
}

func NewClient(apiKey, model string, retryAttempts uint) *Client {
	client := resty.New()
	client.SetBaseURL("https://api.openai.com/v1")
	client.SetHeader("Authorization", "Bearer "+apiKey)
	client.SetHeader("Content-Type", "application/json")

	return &Client{
		httpClient:       client,
		model:            model,
		speechModel:      "gpt-4o-mini-tts",
		speechVoice:      "nova",
		maxRetryAttempts: retryAttempts,
	}
}

func (client *Client) Close() error {
	return client.httpClient.Close()
}

// GetModel returns the model name configured for this client
func (client *Client) GetModel() string {
	return client.model
}

// SetBaseURL overrides the API endpoint, for tests and proxies.
func (client *Client) SetBaseURL(baseURL string) {
	client.httpClient.SetBaseURL(baseURL)
}

// SetSpeechVoice overrides the default text-to-speech voice.
func (client *Client) SetSpeechVoice(voice string) {
	client.speechVoice = voice
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

type SpeechRequest struct {
	Model          string `json:"model"`
	Voice          string `json:"voice"`
	Input          string `json:"input"`
	ResponseFormat string `json:"response_format,omitempty"`
}

// isRetryableError determines if an error should trigger a retry
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gateway.ErrUnavailable) || errors.Is(err, gateway.ErrRateLimited) {
		return true
	}

	// Retry on JSON parsing errors as they might be due to incomplete responses
	errStr := err.Error()
	if strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	return false
}

// statusError maps an HTTP error response to a classified gateway error.
func statusError(statusCode int, body string) error {
	switch {
	case statusCode == 401 || statusCode == 403:
		return fmt.Errorf("response error %d: %s: %w", statusCode, body, gateway.ErrUnauthorized)
	case statusCode == 429:
		return fmt.Errorf("response error %d: %s: %w", statusCode, body, gateway.ErrRateLimited)
	case statusCode >= 500:
		return fmt.Errorf("response error %d: %s: %w", statusCode, body, gateway.ErrUnavailable)
	default:
		return fmt.Errorf("response error %d: %s", statusCode, body)
	}
}

func (client *Client) withRetry(ctx context.Context, call func() error) error {
	return retry.Do(
		func() error {
			if err := call(); err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(client.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

// GenerateVocabulary implements the gateway.Client interface
func (client *Client) GenerateVocabulary(
	ctx context.Context,
	params gateway.GenerateVocabularyRequest,
) (gateway.GenerateVocabularyResponse, error) {
	var result gateway.GenerateVocabularyResponse
	if err := client.withRetry(ctx, func() error {
		response, err := client.generateVocabulary(ctx, params)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return gateway.GenerateVocabularyResponse{}, err
	}
	return result, nil
}

func (client *Client) vocabularyRequestBody(params gateway.GenerateVocabularyRequest) ChatCompletionRequest {
	systemPrompt := `You create English vocabulary lists for Chinese children aged 5 to 8.

GOAL
Return ONLY a JSON array of word objects for the requested category. Each object has:
- "english": a single common English word a young child can learn
- "chinese": the simplified Chinese translation
- "emoji": one emoji that pictures the word

RULES
- Every "english" value must be unique and lowercase.
- Words must be concrete, everyday, and age appropriate.
- No text outside the JSON array. No markdown fences.

Example for category "farm animals":
[{"english":"cow","chinese":"奶牛","emoji":"🐮"},{"english":"pig","chinese":"猪","emoji":"🐷"}]`

	wordCount := params.WordCount
	if wordCount <= 0 {
		wordCount = gateway.DefaultWordCount
	}
	userMessage := fmt.Sprintf("Category: %s\nNumber of words: %d", params.Category, wordCount)

	return ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.7,
		Messages: []Message{
			{Role: RoleSystem, Content: systemPrompt},
			{Role: RoleUser, Content: userMessage},
		},
	}
}

func (client *Client) generateVocabulary(
	ctx context.Context,
	params gateway.GenerateVocabularyRequest,
) (gateway.GenerateVocabularyResponse, error) {
	content, err := client.chatCompletion(ctx, client.vocabularyRequestBody(params))
	if err != nil {
		return gateway.GenerateVocabularyResponse{}, err
	}

	var decoded []gateway.Word
	payload := trimJSONFences(content)
	if err := json.NewDecoder(strings.NewReader(payload)).Decode(&decoded); err != nil {
		slog.Default().Error("Failed to parse vocabulary response as JSON",
			"category", params.Category,
			"payload", content,
			"error", err)
		return gateway.GenerateVocabularyResponse{}, fmt.Errorf("json.Unmarshal(%s): %w", content, gateway.ErrMalformedResponse)
	}

	words := dedupeWords(decoded)
	if len(words) == 0 {
		slog.Default().Error("Vocabulary response contained no usable words",
			"category", params.Category,
			"payload", content)
		return gateway.GenerateVocabularyResponse{}, fmt.Errorf("no usable words in %q: %w", content, gateway.ErrMalformedResponse)
	}
	return gateway.GenerateVocabularyResponse{Words: words}, nil
}

// dedupeWords drops entries with empty fields and repeated english keys,
// keeping the first occurrence. The english key must be unique per list.
func dedupeWords(words []gateway.Word) []gateway.Word {
	seen := make(map[string]struct{}, len(words))
	result := make([]gateway.Word, 0, len(words))
	for _, word := range words {
		english := strings.ToLower(strings.TrimSpace(word.English))
		if english == "" || strings.TrimSpace(word.Chinese) == "" {
			continue
		}
		if _, ok := seen[english]; ok {
			continue
		}
		seen[english] = struct{}{}
		result = append(result, gateway.Word{
			English: english,
			Chinese: strings.TrimSpace(word.Chinese),
			Emoji:   strings.TrimSpace(word.Emoji),
		})
	}
	return result
}

// SynthesizeSpeech implements the gateway.Client interface
func (client *Client) SynthesizeSpeech(
	ctx context.Context,
	params gateway.SynthesizeSpeechRequest,
) (gateway.SynthesizeSpeechResponse, error) {
	var result gateway.SynthesizeSpeechResponse
	if err := client.withRetry(ctx, func() error {
		response, err := client.synthesizeSpeech(ctx, params)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return gateway.SynthesizeSpeechResponse{}, err
	}
	return result, nil
}

func (client *Client) synthesizeSpeech(
	ctx context.Context,
	params gateway.SynthesizeSpeechRequest,
) (gateway.SynthesizeSpeechResponse, error) {
	if strings.TrimSpace(params.Text) == "" {
		return gateway.SynthesizeSpeechResponse{}, fmt.Errorf("empty text: %w", gateway.ErrMalformedResponse)
	}

	requestBody := SpeechRequest{
		Model:          client.speechModel,
		Voice:          client.speechVoice,
		Input:          params.Text,
		ResponseFormat: "mp3",
	}

	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		Post("/audio/speech")
	if err != nil {
		return gateway.SynthesizeSpeechResponse{}, fmt.Errorf("httpClient.Post: %w", err)
	}
	if response.IsError() {
		return gateway.SynthesizeSpeechResponse{}, statusError(response.StatusCode(), response.String())
	}

	audio := response.Bytes()
	if len(audio) == 0 {
		return gateway.SynthesizeSpeechResponse{}, fmt.Errorf("empty audio body: %w", gateway.ErrMalformedResponse)
	}
	return gateway.SynthesizeSpeechResponse{
		Audio:    audio,
		MIMEType: "audio/mpeg",
	}, nil
}

// SendChatTurn implements the gateway.Client interface
func (client *Client) SendChatTurn(
	ctx context.Context,
	params gateway.SendChatTurnRequest,
) (gateway.SendChatTurnResponse, error) {
	var result gateway.SendChatTurnResponse
	if err := client.withRetry(ctx, func() error {
		response, err := client.sendChatTurn(ctx, params)
		if err != nil {
			return err
		}
		result = response
		return nil
	}); err != nil {
		return gateway.SendChatTurnResponse{}, err
	}
	return result, nil
}

func (client *Client) chatTurnRequestBody(params gateway.SendChatTurnRequest) ChatCompletionRequest {
	systemPrompt := fmt.Sprintf(`You are a friendly character in an English practice roleplay for a Chinese child aged 5 to 8.

Scenario: %s

RULES
- Stay in character for the scenario.
- Reply in one or two short, simple English sentences.
- Be warm and encouraging. Ask a small follow-up question when natural.
- Never correct the child harshly. Never use difficult words.`, params.Scenario)

	messages := make([]Message, 0, len(params.History)+2)
	messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	for _, entry := range params.History {
		role := RoleUser
		if entry.Role == gateway.ChatRoleAssistant {
			role = RoleAssistant
		}
		messages = append(messages, Message{Role: role, Content: entry.Text})
	}
	messages = append(messages, Message{Role: RoleUser, Content: params.Message})

	return ChatCompletionRequest{
		Model:       client.model,
		Temperature: 0.8,
		Messages:    messages,
	}
}

func (client *Client) sendChatTurn(
	ctx context.Context,
	params gateway.SendChatTurnRequest,
) (gateway.SendChatTurnResponse, error) {
	content, err := client.chatCompletion(ctx, client.chatTurnRequestBody(params))
	if err != nil {
		return gateway.SendChatTurnResponse{}, err
	}
	return gateway.SendChatTurnResponse{Text: content}, nil
}

// chatCompletion posts a chat-completions request and returns the first choice's content.
func (client *Client) chatCompletion(ctx context.Context, requestBody ChatCompletionRequest) (string, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&ChatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post: %w", err)
	}
	if response.IsError() {
		return "", statusError(response.StatusCode(), response.String())
	}

	responseBody := response.Result().(*ChatCompletionResponse)
	if responseBody == nil || len(responseBody.Choices) == 0 {
		return "", fmt.Errorf("empty response body or choices in %q: %w", response.String(), gateway.ErrMalformedResponse)
	}

	content := strings.TrimSpace(responseBody.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("empty response content in %q: %w", response.String(), gateway.ErrMalformedResponse)
	}
	slog.Default().Debug("openai response content",
		"request", requestBody,
		"response", responseBody,
	)
	return content, nil
}

// trimJSONFences strips a markdown code fence around a JSON payload. Models
// occasionally wrap the array despite the prompt forbidding it.
func trimJSONFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
