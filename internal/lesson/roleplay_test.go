package lesson

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexikid/lexikid/internal/gateway"
)

func newRoleplayController(t *testing.T, gw gateway.Client) *Controller {
	t.Helper()
	controller := NewController(gw)
	require.NoError(t, controller.SelectScenario("ordering food at a restaurant", "Welcome! What would you like to eat?"))
	return controller
}

func TestController_SelectScenario(t *testing.T) {
	controller := newRoleplayController(t, &stubGateway{})
	state := controller.Snapshot()

	assert.Equal(t, ScreenRoleplay, state.Screen)
	assert.Equal(t, ModeSpeaking, state.Mode)
	assert.Equal(t, "ordering food at a restaurant", state.Scenario)
	require.Len(t, state.Transcript, 1)
	assert.Equal(t, gateway.ChatRoleAssistant, state.Transcript[0].Role)
}

func TestController_SelectScenario_OnlyFromHome(t *testing.T) {
	controller := newLearnController(t)
	err := controller.SelectScenario("at the zoo", "")
	assert.ErrorIs(t, err, ErrScreenMismatch)
}

func TestController_SendMessage(t *testing.T) {
	var gotRequest gateway.SendChatTurnRequest
	gw := &stubGateway{
		sendChatTurn: func(ctx context.Context, params gateway.SendChatTurnRequest) (gateway.SendChatTurnResponse, error) {
			gotRequest = params
			return gateway.SendChatTurnResponse{Text: "One pizza coming up!"}, nil
		},
	}
	controller := newRoleplayController(t, gw)

	reply, err := controller.SendMessage(context.Background(), "  I want a pizza  ")
	require.NoError(t, err)
	assert.Equal(t, gateway.ChatRoleAssistant, reply.Role)
	assert.Equal(t, "One pizza coming up!", reply.Text)

	// The gateway saw the greeting as history and the trimmed message.
	assert.Equal(t, "ordering food at a restaurant", gotRequest.Scenario)
	require.Len(t, gotRequest.History, 1)
	assert.Equal(t, "I want a pizza", gotRequest.Message)

	// Transcript order: greeting, user, assistant.
	transcript := controller.Snapshot().Transcript
	require.Len(t, transcript, 3)
	assert.Equal(t, gateway.ChatRoleUser, transcript[1].Role)
	assert.Equal(t, "I want a pizza", transcript[1].Text)
	assert.Equal(t, gateway.ChatRoleAssistant, transcript[2].Role)
}

func TestController_SendMessage_BlankRejected(t *testing.T) {
	controller := newRoleplayController(t, &stubGateway{})

	_, err := controller.SendMessage(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Len(t, controller.Snapshot().Transcript, 1, "rejected message leaves the transcript untouched")
}

func TestController_SendMessage_WrongScreen(t *testing.T) {
	controller := NewController(&stubGateway{})
	_, err := controller.SendMessage(context.Background(), "hello")
	assert.ErrorIs(t, err, ErrScreenMismatch)
}

func TestController_SendMessage_SerializedTurns(t *testing.T) {
	release := make(chan struct{})
	gw := &stubGateway{
		sendChatTurn: func(ctx context.Context, params gateway.SendChatTurnRequest) (gateway.SendChatTurnResponse, error) {
			<-release
			return gateway.SendChatTurnResponse{Text: "Sure!"}, nil
		},
	}
	controller := newRoleplayController(t, gw)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := controller.SendMessage(context.Background(), "first message")
		assert.NoError(t, err)
	}()

	require.Eventually(t, func() bool {
		return len(controller.Snapshot().Transcript) == 2
	}, time.Second, time.Millisecond)

	// A second send while the first turn is in flight is rejected.
	_, err := controller.SendMessage(context.Background(), "second message")
	assert.ErrorIs(t, err, ErrTurnInFlight)

	close(release)
	wg.Wait()

	transcript := controller.Snapshot().Transcript
	require.Len(t, transcript, 3)
	assert.Equal(t, "Sure!", transcript[2].Text)

	// After the turn completed, sending works again.
	_, err = controller.SendMessage(context.Background(), "third message")
	require.NoError(t, err)
}

func TestController_SendMessage_FallbackOnGatewayFailure(t *testing.T) {
	gw := &stubGateway{
		sendChatTurn: func(ctx context.Context, params gateway.SendChatTurnRequest) (gateway.SendChatTurnResponse, error) {
			return gateway.SendChatTurnResponse{}, fmt.Errorf("response error 503: %w", gateway.ErrUnavailable)
		},
	}
	controller := newRoleplayController(t, gw)

	reply, err := controller.SendMessage(context.Background(), "hello")
	require.NoError(t, err, "gateway failure degrades, it does not surface")
	assert.Equal(t, fallbackReply, reply.Text)

	// Every accepted user message has a corresponding assistant entry, and
	// no error banner state is set.
	state := controller.Snapshot()
	require.Len(t, state.Transcript, 3)
	assert.Equal(t, fallbackReply, state.Transcript[2].Text)
	assert.Empty(t, state.ErrorMessage)
	assert.Equal(t, ScreenRoleplay, state.Screen)

	// The next turn may be sent: the failure did not leave the flight flag set.
	_, err = controller.SendMessage(context.Background(), "still there?")
	require.NoError(t, err)
}

func TestController_SendMessage_StaleReplyDiscarded(t *testing.T) {
	release := make(chan struct{})
	gw := &stubGateway{
		sendChatTurn: func(ctx context.Context, params gateway.SendChatTurnRequest) (gateway.SendChatTurnResponse, error) {
			<-release
			return gateway.SendChatTurnResponse{Text: "late reply"}, nil
		},
	}
	controller := newRoleplayController(t, gw)

	done := make(chan error, 1)
	go func() {
		_, err := controller.SendMessage(context.Background(), "hello")
		done <- err
	}()

	require.Eventually(t, func() bool {
		return len(controller.Snapshot().Transcript) == 2
	}, time.Second, time.Millisecond)

	controller.GoHome()
	close(release)

	require.ErrorIs(t, <-done, ErrSessionReset)
	state := controller.Snapshot()
	assert.Equal(t, ScreenHome, state.Screen)
	assert.Empty(t, state.Transcript, "late reply must not resurrect the transcript")
}

func TestController_EnsureAudio(t *testing.T) {
	var calls int
	gw := &stubGateway{
		generateVocabulary: func(ctx context.Context, params gateway.GenerateVocabularyRequest) (gateway.GenerateVocabularyResponse, error) {
			return gateway.GenerateVocabularyResponse{Words: fourWords()}, nil
		},
		synthesizeSpeech: func(ctx context.Context, params gateway.SynthesizeSpeechRequest) (gateway.SynthesizeSpeechResponse, error) {
			calls++
			return gateway.SynthesizeSpeechResponse{Audio: []byte("mp3-" + params.Text), MIMEType: "audio/mpeg"}, nil
		},
	}
	controller := NewController(gw)
	require.NoError(t, controller.SelectCategory(context.Background(), "animals"))
	require.Eventually(t, func() bool {
		return controller.Snapshot().Screen == ScreenLearn
	}, time.Second, time.Millisecond)

	audio, mimeType, err := controller.EnsureAudio(context.Background(), "dog")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-dog"), audio)
	assert.Equal(t, "audio/mpeg", mimeType)
	assert.Equal(t, 1, calls)

	// Second request is served from the enrichment, not the gateway.
	audio, _, err = controller.EnsureAudio(context.Background(), "dog")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-dog"), audio)
	assert.Equal(t, 1, calls)

	// Snapshot reflects the enrichment.
	for _, item := range controller.Snapshot().VocabItems {
		if item.English == "dog" {
			assert.True(t, item.HasAudio)
		} else {
			assert.False(t, item.HasAudio)
		}
	}
}

func TestController_EnsureAudio_UnknownWord(t *testing.T) {
	controller := newLearnController(t)
	_, _, err := controller.EnsureAudio(context.Background(), "elephant")
	assert.ErrorIs(t, err, ErrUnknownWord)
}

func TestController_EnsureAudio_SingleFlightPerWord(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	gw := &stubGateway{
		generateVocabulary: func(ctx context.Context, params gateway.GenerateVocabularyRequest) (gateway.GenerateVocabularyResponse, error) {
			return gateway.GenerateVocabularyResponse{Words: fourWords()}, nil
		},
		synthesizeSpeech: func(ctx context.Context, params gateway.SynthesizeSpeechRequest) (gateway.SynthesizeSpeechResponse, error) {
			close(started)
			<-release
			return gateway.SynthesizeSpeechResponse{Audio: []byte("mp3"), MIMEType: "audio/mpeg"}, nil
		},
	}
	controller := NewController(gw)
	require.NoError(t, controller.SelectCategory(context.Background(), "animals"))
	require.Eventually(t, func() bool {
		return controller.Snapshot().Screen == ScreenLearn
	}, time.Second, time.Millisecond)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, err := controller.EnsureAudio(context.Background(), "dog")
		assert.NoError(t, err)
	}()

	// Once the first fetch holds the slot, a concurrent request is skipped.
	<-started
	_, _, err := controller.EnsureAudio(context.Background(), "dog")
	assert.ErrorIs(t, err, ErrAudioPending)

	close(release)
	<-done
}

func TestController_EnsureAudio_FailureAllowsRetry(t *testing.T) {
	var calls int
	gw := &stubGateway{
		generateVocabulary: func(ctx context.Context, params gateway.GenerateVocabularyRequest) (gateway.GenerateVocabularyResponse, error) {
			return gateway.GenerateVocabularyResponse{Words: fourWords()}, nil
		},
		synthesizeSpeech: func(ctx context.Context, params gateway.SynthesizeSpeechRequest) (gateway.SynthesizeSpeechResponse, error) {
			calls++
			if calls == 1 {
				return gateway.SynthesizeSpeechResponse{}, fmt.Errorf("response error 503: %w", gateway.ErrUnavailable)
			}
			return gateway.SynthesizeSpeechResponse{Audio: []byte("mp3"), MIMEType: "audio/mpeg"}, nil
		},
	}
	controller := NewController(gw)
	require.NoError(t, controller.SelectCategory(context.Background(), "animals"))
	require.Eventually(t, func() bool {
		return controller.Snapshot().Screen == ScreenLearn
	}, time.Second, time.Millisecond)

	_, _, err := controller.EnsureAudio(context.Background(), "dog")
	require.Error(t, err)

	// The failed fetch released its slot; a retry succeeds.
	audio, _, err := controller.EnsureAudio(context.Background(), "dog")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3"), audio)
	assert.Equal(t, 2, calls)
}
