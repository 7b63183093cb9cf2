package lesson

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/lexikid/lexikid/internal/gateway"
)

// Screen identifies which screen of the single-page app is active.
type Screen string

const (
	ScreenHome     Screen = "home"
	ScreenLoading  Screen = "loading"
	ScreenLearn    Screen = "learn"
	ScreenQuiz     Screen = "quiz"
	ScreenRoleplay Screen = "roleplay"
)

// Mode identifies what kind of lesson the session is running.
type Mode string

const (
	ModeVocabulary Mode = "vocabulary"
	ModeSpeaking   Mode = "speaking"
)

// Intent rejection errors. These mean the user action is not valid in the
// controller's current state, not that anything failed.
var (
	ErrScreenMismatch = errors.New("lesson: action not allowed on this screen")
	ErrFetchInFlight  = errors.New("lesson: a vocabulary request is already in progress")
	ErrTurnInFlight   = errors.New("lesson: a roleplay turn is already in progress")
	ErrEmptyMessage   = errors.New("lesson: message is empty")
	ErrNoAnswer       = errors.New("lesson: no answer submitted for the current question")
	ErrQuizFinished   = errors.New("lesson: the quiz is already finished")
	ErrUnknownWord    = errors.New("lesson: word is not part of the current lesson")
	ErrAudioPending   = errors.New("lesson: an audio fetch for this word is already in progress")
	ErrSessionReset   = errors.New("lesson: session was reset while a request was in flight")
)

// State is an immutable snapshot of the controller, safe to hand to any
// presentation layer. Presentation only reads it and dispatches intents back.
type State struct {
	Screen            Screen                `json:"screen"`
	Mode              Mode                  `json:"mode"`
	Category          string                `json:"category,omitempty"`
	Scenario          string                `json:"scenario,omitempty"`
	VocabItems        []VocabularyItem      `json:"vocab_items,omitempty"`
	QuizItems         []QuizItem            `json:"quiz_items,omitempty"`
	CurrentIndex      int                   `json:"current_index"`
	Score             int                   `json:"score"`
	SelectedAnswer    string                `json:"selected_answer,omitempty"`
	LastAnswerCorrect *bool                 `json:"last_answer_correct,omitempty"`
	Finished          bool                  `json:"finished"`
	ErrorMessage      string                `json:"error_message,omitempty"`
	ErrorKind         gateway.FailureKind   `json:"error_kind,omitempty"`
	ErrorDetail       string                `json:"error_detail,omitempty"`
	Transcript        []gateway.ChatMessage `json:"transcript,omitempty"`
}

// Controller is the finite-state machine governing which screen is active and
// owning the score and progress counters. All mutation goes through its
// methods; asynchronous gateway results are tagged with a generation token
// and discarded when the session has since been reset.
type Controller struct {
	gw        gateway.Client
	logger    *slog.Logger
	wordCount int
	onFinish  func(category string, score, total int)

	mu                sync.Mutex
	rnd               *rand.Rand
	screen            Screen
	mode              Mode
	category          string
	scenario          string
	store             *VocabularyStore
	quizItems         []QuizItem
	currentIndex      int
	score             int
	selectedAnswer    string
	lastAnswerCorrect *bool
	finished          bool
	errorMessage      string
	errorKind         gateway.FailureKind
	errorDetail       string
	transcript        []gateway.ChatMessage
	chatInFlight      bool
	vocabInFlight     bool
	generation        uint64
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger used for discarded results and
// gateway failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithRand sets the random source used for quiz generation. Tests use a
// seeded source.
func WithRand(rnd *rand.Rand) Option {
	return func(c *Controller) {
		c.rnd = rnd
	}
}

// WithWordCount sets how many words are requested per category.
func WithWordCount(count int) Option {
	return func(c *Controller) {
		c.wordCount = count
	}
}

// WithQuizFinishedHook registers a callback invoked after a quiz session
// finishes, with the final score and total.
func WithQuizFinishedHook(hook func(category string, score, total int)) Option {
	return func(c *Controller) {
		c.onFinish = hook
	}
}

// NewController creates a session controller in the Home screen.
func NewController(gw gateway.Client, opts ...Option) *Controller {
	controller := &Controller{
		gw:        gw,
		logger:    slog.Default(),
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
		wordCount: gateway.DefaultWordCount,
		screen:    ScreenHome,
		mode:      ModeVocabulary,
	}
	for _, opt := range opts {
		opt(controller)
	}
	return controller
}

// Snapshot returns the current session state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() State {
	state := State{
		Screen:         c.screen,
		Mode:           c.mode,
		Category:       c.category,
		Scenario:       c.scenario,
		CurrentIndex:   c.currentIndex,
		Score:          c.score,
		SelectedAnswer: c.selectedAnswer,
		Finished:       c.finished,
		ErrorMessage:   c.errorMessage,
		ErrorKind:      c.errorKind,
		ErrorDetail:    c.errorDetail,
	}
	if c.lastAnswerCorrect != nil {
		correct := *c.lastAnswerCorrect
		state.LastAnswerCorrect = &correct
	}
	if c.store != nil {
		state.VocabItems = c.store.Items()
	}
	if len(c.quizItems) > 0 {
		state.QuizItems = make([]QuizItem, len(c.quizItems))
		copy(state.QuizItems, c.quizItems)
	}
	if len(c.transcript) > 0 {
		state.Transcript = make([]gateway.ChatMessage, len(c.transcript))
		copy(state.Transcript, c.transcript)
	}
	return state
}

// SelectCategory transitions Home -> Loading and starts the asynchronous
// vocabulary fetch. Only one fetch may be in flight per session.
func (c *Controller) SelectCategory(ctx context.Context, category string) error {
	c.mu.Lock()
	if c.vocabInFlight {
		c.mu.Unlock()
		return ErrFetchInFlight
	}
	if c.screen != ScreenHome {
		c.mu.Unlock()
		return ErrScreenMismatch
	}

	c.screen = ScreenLoading
	c.mode = ModeVocabulary
	c.category = category
	c.clearErrorLocked()
	c.score = 0
	c.vocabInFlight = true
	generation := c.generation
	wordCount := c.wordCount
	c.mu.Unlock()

	// The fetch outlives the caller's request. Cancellation happens through
	// the generation check, not the context.
	fetchCtx := context.WithoutCancel(ctx)
	go func() {
		response, err := c.gw.GenerateVocabulary(fetchCtx, gateway.GenerateVocabularyRequest{
			Category:  category,
			WordCount: wordCount,
		})
		c.applyVocabulary(generation, response.Words, err)
	}()
	return nil
}

// applyVocabulary resolves the Loading screen with the fetch result. A result
// arriving after the session was reset is discarded.
func (c *Controller) applyVocabulary(generation uint64, words []gateway.Word, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || c.screen != ScreenLoading {
		c.logger.Debug("discarding stale vocabulary result",
			"generation", generation,
			"current_generation", c.generation,
			"screen", c.screen,
		)
		return
	}
	c.vocabInFlight = false

	if err != nil {
		c.logger.Error("vocabulary fetch failed",
			"category", c.category,
			"kind", gateway.Classify(err),
			"error", err,
		)
		c.screen = ScreenHome
		c.setErrorLocked(err)
		return
	}

	store := NewVocabularyStore(words)
	quizItems, quizErr := GenerateQuiz(store.Items(), c.rnd)
	if quizErr != nil {
		c.logger.Error("vocabulary list too small for a quiz",
			"category", c.category,
			"words", store.Len(),
			"error", quizErr,
		)
		c.screen = ScreenHome
		c.errorMessage = failureMessage(gateway.FailureMalformed)
		c.errorKind = gateway.FailureMalformed
		return
	}

	c.store = store
	c.quizItems = quizItems
	c.currentIndex = 0
	c.screen = ScreenLearn
}

// SelectScenario transitions Home -> Roleplay and seeds the transcript with
// the character's greeting, when one is given.
func (c *Controller) SelectScenario(scenario, greeting string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen != ScreenHome {
		return ErrScreenMismatch
	}

	c.screen = ScreenRoleplay
	c.mode = ModeSpeaking
	c.scenario = scenario
	c.clearErrorLocked()
	c.transcript = nil
	if greeting != "" {
		c.transcript = append(c.transcript, gateway.ChatMessage{
			Role: gateway.ChatRoleAssistant,
			Text: greeting,
		})
	}
	return nil
}

// NextCard advances the Learn screen by one card. A no-op at the last index;
// navigation never wraps.
func (c *Controller) NextCard() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen != ScreenLearn {
		return ErrScreenMismatch
	}
	if c.store != nil && c.currentIndex < c.store.Len()-1 {
		c.currentIndex++
	}
	return nil
}

// PrevCard moves the Learn screen back one card. A no-op at index 0.
func (c *Controller) PrevCard() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen != ScreenLearn {
		return ErrScreenMismatch
	}
	if c.currentIndex > 0 {
		c.currentIndex--
	}
	return nil
}

// SwitchToQuiz transitions Learn -> Quiz with a fresh score and index.
func (c *Controller) SwitchToQuiz() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen != ScreenLearn {
		return ErrScreenMismatch
	}
	c.screen = ScreenQuiz
	c.currentIndex = 0
	c.score = 0
	c.finished = false
	c.selectedAnswer = ""
	c.lastAnswerCorrect = nil
	return nil
}

// SwitchToLearn transitions Quiz -> Learn, preserving the current index when
// it is still a valid card position.
func (c *Controller) SwitchToLearn() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen != ScreenQuiz {
		return ErrScreenMismatch
	}
	c.screen = ScreenLearn
	if c.store == nil || c.currentIndex >= c.store.Len() {
		c.currentIndex = 0
	}
	c.selectedAnswer = ""
	c.lastAnswerCorrect = nil
	return nil
}

// SubmitAnswer records the answer for the current quiz question and returns
// whether it was correct. Submitting again for the same question is
// idempotent: the first answer stands and the score does not change.
func (c *Controller) SubmitAnswer(option string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.screen != ScreenQuiz {
		return false, ErrScreenMismatch
	}
	if c.finished {
		return false, ErrQuizFinished
	}
	if c.selectedAnswer != "" {
		return c.lastAnswerCorrect != nil && *c.lastAnswerCorrect, nil
	}

	correct := option == c.quizItems[c.currentIndex].English
	c.selectedAnswer = option
	c.lastAnswerCorrect = &correct
	if correct {
		c.score++
	}
	return correct, nil
}

// Advance moves to the next quiz question after an answer was submitted, or
// marks the session finished on the last question. The display delay between
// answer and advance is a presentation concern.
func (c *Controller) Advance() error {
	c.mu.Lock()

	if c.screen != ScreenQuiz {
		c.mu.Unlock()
		return ErrScreenMismatch
	}
	if c.finished {
		c.mu.Unlock()
		return ErrQuizFinished
	}
	if c.selectedAnswer == "" {
		c.mu.Unlock()
		return ErrNoAnswer
	}

	if c.currentIndex >= len(c.quizItems)-1 {
		c.finished = true
		category, score, total := c.category, c.score, len(c.quizItems)
		hook := c.onFinish
		c.mu.Unlock()
		if hook != nil {
			hook(category, score, total)
		}
		return nil
	}

	c.currentIndex++
	c.selectedAnswer = ""
	c.lastAnswerCorrect = nil
	c.mu.Unlock()
	return nil
}

// GoHome resets the session to its initial state from any screen. The
// generation bump makes any in-flight gateway result stale.
func (c *Controller) GoHome() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.screen = ScreenHome
	c.mode = ModeVocabulary
	c.category = ""
	c.scenario = ""
	c.store = nil
	c.quizItems = nil
	c.currentIndex = 0
	c.score = 0
	c.selectedAnswer = ""
	c.lastAnswerCorrect = nil
	c.finished = false
	c.transcript = nil
	c.chatInFlight = false
	c.vocabInFlight = false
	c.clearErrorLocked()
}

func (c *Controller) clearErrorLocked() {
	c.errorMessage = ""
	c.errorKind = ""
	c.errorDetail = ""
}

func (c *Controller) setErrorLocked(err error) {
	kind := gateway.Classify(err)
	c.errorKind = kind
	c.errorMessage = failureMessage(kind)
	if kind == gateway.FailureUnknown {
		c.errorDetail = truncateDetail(err.Error())
	}
}
