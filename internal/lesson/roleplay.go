package lesson

import (
	"context"
	"strings"

	"github.com/lexikid/lexikid/internal/gateway"
)

// fallbackReply is appended when a roleplay turn fails at the gateway. The
// conversation keeps flowing instead of showing a child an error banner.
const fallbackReply = "Oh! I didn't quite hear you. Can you say that again?"

// SendMessage runs one roleplay turn: the child's message is appended to the
// transcript, the gateway produces the character's reply, and both entries
// land in order. Turns are strictly serialized; a send while a prior turn is
// in flight is rejected, as is a blank message. On gateway failure the reply
// is a fixed fallback line, so every accepted message gets an assistant
// entry.
func (c *Controller) SendMessage(ctx context.Context, text string) (gateway.ChatMessage, error) {
	text = strings.TrimSpace(text)

	c.mu.Lock()
	if c.screen != ScreenRoleplay {
		c.mu.Unlock()
		return gateway.ChatMessage{}, ErrScreenMismatch
	}
	if c.chatInFlight {
		c.mu.Unlock()
		return gateway.ChatMessage{}, ErrTurnInFlight
	}
	if text == "" {
		c.mu.Unlock()
		return gateway.ChatMessage{}, ErrEmptyMessage
	}

	history := make([]gateway.ChatMessage, len(c.transcript))
	copy(history, c.transcript)
	c.transcript = append(c.transcript, gateway.ChatMessage{
		Role: gateway.ChatRoleUser,
		Text: text,
	})
	c.chatInFlight = true
	generation := c.generation
	scenario := c.scenario
	c.mu.Unlock()

	response, err := c.gw.SendChatTurn(ctx, gateway.SendChatTurnRequest{
		Scenario: scenario,
		History:  history,
		Message:  text,
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation {
		// The session was reset mid-turn; the transcript no longer exists.
		c.logger.Debug("discarding stale roleplay reply", "scenario", scenario)
		return gateway.ChatMessage{}, ErrSessionReset
	}
	c.chatInFlight = false

	reply := gateway.ChatMessage{Role: gateway.ChatRoleAssistant, Text: response.Text}
	if err != nil {
		c.logger.Error("roleplay turn failed",
			"scenario", scenario,
			"kind", gateway.Classify(err),
			"error", err,
		)
		reply.Text = fallbackReply
	}
	c.transcript = append(c.transcript, reply)
	return reply, nil
}

// EnsureAudio returns speech audio for a word of the current lesson,
// synthesizing it through the gateway on first use. Fetches are single-flight
// per word; a concurrent request for the same word gets ErrAudioPending and
// should retry shortly. A failed synthesis never blocks the lesson.
func (c *Controller) EnsureAudio(ctx context.Context, english string) ([]byte, string, error) {
	c.mu.Lock()
	store := c.store
	generation := c.generation
	c.mu.Unlock()

	if store == nil || !store.Contains(english) {
		return nil, "", ErrUnknownWord
	}
	if audio, ok := store.Audio(english); ok {
		return audio, "audio/mpeg", nil
	}
	if !store.BeginFetch(english) {
		// Lost the race: either the fetch just finished or it is pending.
		if audio, ok := store.Audio(english); ok {
			return audio, "audio/mpeg", nil
		}
		return nil, "", ErrAudioPending
	}

	response, err := c.gw.SynthesizeSpeech(ctx, gateway.SynthesizeSpeechRequest{Text: english})
	if err != nil {
		store.AbortFetch(english)
		c.logger.Error("speech synthesis failed",
			"word", english,
			"kind", gateway.Classify(err),
			"error", err,
		)
		return nil, "", err
	}

	c.mu.Lock()
	stale := generation != c.generation
	c.mu.Unlock()
	if stale {
		store.AbortFetch(english)
		return nil, "", ErrSessionReset
	}

	store.CompleteFetch(english, response.Audio)
	mimeType := response.MIMEType
	if mimeType == "" {
		mimeType = "audio/mpeg"
	}
	return response.Audio, mimeType, nil
}
