package gateway

import (
	"context"
)

//go:generate mockgen -source=interface.go -destination=../mocks/gateway/mock_client.go -package=mock_gateway

// Client interface defines the generative-language operations the lesson core depends on
type Client interface {
	GenerateVocabulary(ctx context.Context, params GenerateVocabularyRequest) (GenerateVocabularyResponse, error)
	SynthesizeSpeech(ctx context.Context, params SynthesizeSpeechRequest) (SynthesizeSpeechResponse, error)
	SendChatTurn(ctx context.Context, params SendChatTurnRequest) (SendChatTurnResponse, error)
}

// Word is a single vocabulary entry as produced by the model
type Word struct {
	English string `json:"english"`
	Chinese string `json:"chinese"`
	Emoji   string `json:"emoji"`
}

// GenerateVocabularyRequest holds parameters for generating a word list for one category
type GenerateVocabularyRequest struct {
	Category  string `json:"category"`
	WordCount int    `json:"word_count,omitempty"`
}

type GenerateVocabularyResponse struct {
	Words []Word
}

// SynthesizeSpeechRequest holds the text to convert into speech audio
type SynthesizeSpeechRequest struct {
	Text string `json:"text"`
}

type SynthesizeSpeechResponse struct {
	Audio    []byte
	MIMEType string
}

// ChatRole identifies the author of a roleplay transcript entry
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single turn of a roleplay conversation
type ChatMessage struct {
	Role ChatRole `json:"role"`
	Text string   `json:"text"`
}

// SendChatTurnRequest holds one roleplay turn with its prior history
type SendChatTurnRequest struct {
	Scenario string        `json:"scenario"`
	History  []ChatMessage `json:"history,omitempty"`
	Message  string        `json:"message"`
}

type SendChatTurnResponse struct {
	Text string
}

const (
	DefaultMaxRetryAttempts = 3
	DefaultWordCount        = 8
)
