package cli

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/lexikid/lexikid/internal/gateway"
	"github.com/lexikid/lexikid/internal/history"
	mock_gateway "github.com/lexikid/lexikid/internal/mocks/gateway"
	"github.com/lexikid/lexikid/internal/scenario"
)

func testCatalog(t *testing.T) *scenario.Catalog {
	t.Helper()
	catalog, err := scenario.Load()
	require.NoError(t, err)
	return catalog
}

func TestPracticeCLI_Session(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mock_gateway.NewMockClient(ctrl)
	mockClient.EXPECT().
		GenerateVocabulary(gomock.Any(), gateway.GenerateVocabularyRequest{
			Category:  "animals",
			WordCount: 4,
		}).
		Return(gateway.GenerateVocabularyResponse{
			Words: []gateway.Word{
				{English: "dog", Chinese: "狗", Emoji: "🐶"},
				{English: "cat", Chinese: "猫", Emoji: "🐱"},
				{English: "car", Chinese: "车", Emoji: "🚗"},
				{English: "bus", Chinese: "公交车", Emoji: "🚌"},
			},
		}, nil)

	repo, err := history.NewRepository(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	defer func() {
		_ = repo.Close()
	}()

	// Category 1, Enter through four flashcards, then answer option 1 for
	// each of the four questions. Option order is random, so only the flow
	// is asserted, not the score.
	input := "1\n" + strings.Repeat("\n", 4) + strings.Repeat("1\n", 4)
	var output bytes.Buffer
	cli := NewPracticeCLI(testCatalog(t), mockClient, PracticeOptions{
		Input:       strings.NewReader(input),
		Output:      &output,
		WordCount:   4,
		HistoryRepo: repo,
		Logger:      slog.New(slog.DiscardHandler),
	})

	require.NoError(t, cli.Session(context.Background()))

	got := output.String()
	assert.Contains(t, got, "Pick a category:")
	assert.Contains(t, got, "4 words.")
	assert.Contains(t, got, "dog")
	assert.Contains(t, got, "Quiz time!")
	assert.Contains(t, got, "You got")

	// The finished quiz is recorded.
	results, err := repo.Recent(10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "animals", results[0].Category)
	assert.Equal(t, 4, results[0].Total)
}

func TestPracticeCLI_Session_QuitAtCategoryPrompt(t *testing.T) {
	ctrl := gomock.NewController(t)
	var output bytes.Buffer
	cli := NewPracticeCLI(testCatalog(t), mock_gateway.NewMockClient(ctrl), PracticeOptions{
		Input:  strings.NewReader("q\n"),
		Output: &output,
		Logger: slog.New(slog.DiscardHandler),
	})

	err := cli.Session(context.Background())
	assert.ErrorIs(t, err, errEnd)
}

func TestPracticeCLI_Session_InvalidCategoryRetries(t *testing.T) {
	ctrl := gomock.NewController(t)
	var output bytes.Buffer
	cli := NewPracticeCLI(testCatalog(t), mock_gateway.NewMockClient(ctrl), PracticeOptions{
		Input:  strings.NewReader("banana\n99\nq\n"),
		Output: &output,
		Logger: slog.New(slog.DiscardHandler),
	})

	err := cli.Session(context.Background())
	assert.ErrorIs(t, err, errEnd)
	assert.Contains(t, output.String(), "not one of the numbers")
}

func TestPracticeCLI_Session_FetchFailureShowsFriendlyMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockClient := mock_gateway.NewMockClient(ctrl)
	mockClient.EXPECT().
		GenerateVocabulary(gomock.Any(), gomock.Any()).
		Return(gateway.GenerateVocabularyResponse{}, gateway.ErrRateLimited)

	var output bytes.Buffer
	cli := NewPracticeCLI(testCatalog(t), mockClient, PracticeOptions{
		Input:  strings.NewReader("1\n"),
		Output: &output,
		Logger: slog.New(slog.DiscardHandler),
	})

	// The session swallows the failure and returns to the category prompt.
	require.NoError(t, cli.Session(context.Background()))
	assert.Contains(t, output.String(), "take a little break")
}
