package lesson

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func vocabList(words ...string) []VocabularyItem {
	items := make([]VocabularyItem, 0, len(words))
	for _, word := range words {
		items = append(items, VocabularyItem{English: word, Chinese: "中文", Emoji: "⭐"})
	}
	return items
}

func TestGenerateQuiz(t *testing.T) {
	tests := []struct {
		name            string
		items           []VocabularyItem
		wantOptionCount int
		wantErr         error
	}{
		{
			name:            "four words give four options each",
			items:           vocabList("dog", "cat", "car", "bus"),
			wantOptionCount: 4,
		},
		{
			name:            "large list still gives four options",
			items:           vocabList("dog", "cat", "car", "bus", "sun", "moon", "star", "tree"),
			wantOptionCount: 4,
		},
		{
			name:            "three words degrade to three options",
			items:           vocabList("dog", "cat", "car"),
			wantOptionCount: 3,
		},
		{
			name:            "two words degrade to two options",
			items:           vocabList("dog", "cat"),
			wantOptionCount: 2,
		},
		{
			name:    "one word is not enough",
			items:   vocabList("dog"),
			wantErr: ErrNotEnoughWords,
		},
		{
			name:    "empty list is not enough",
			items:   nil,
			wantErr: ErrNotEnoughWords,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rnd := rand.New(rand.NewSource(1))
			got, err := GenerateQuiz(tt.items, rnd)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			require.Len(t, got, len(tt.items))

			for i, quizItem := range got {
				assert.Equal(t, tt.items[i].English, quizItem.English)
				assert.Len(t, quizItem.Options, tt.wantOptionCount)

				seen := make(map[string]int)
				for _, option := range quizItem.Options {
					seen[option]++
				}
				assert.Len(t, seen, tt.wantOptionCount, "options must be distinct")
				assert.Equal(t, 1, seen[quizItem.English], "answer must appear exactly once")

				// Every distractor comes from another word in the list.
				valid := make(map[string]struct{})
				for _, item := range tt.items {
					valid[item.English] = struct{}{}
				}
				for _, option := range quizItem.Options {
					_, ok := valid[option]
					assert.True(t, ok, "option %q is not from the word list", option)
				}
			}
		})
	}
}

func TestGenerateQuiz_FourWordScenario(t *testing.T) {
	items := vocabList("dog", "cat", "car", "bus")
	rnd := rand.New(rand.NewSource(42))

	got, err := GenerateQuiz(items, rnd)
	require.NoError(t, err)
	require.Len(t, got, 4)

	// With N-1 = 3 the options for "dog" are exactly a permutation of the
	// whole word set.
	assert.ElementsMatch(t, []string{"dog", "cat", "car", "bus"}, got[0].Options)
}

func TestGenerateQuiz_DoesNotMutateInput(t *testing.T) {
	items := vocabList("dog", "cat", "car", "bus")
	original := make([]VocabularyItem, len(items))
	copy(original, items)

	_, err := GenerateQuiz(items, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.Equal(t, original, items)
}

func TestGenerateQuiz_NoPositionalBias(t *testing.T) {
	items := vocabList("dog", "cat", "car", "bus", "sun")
	rnd := rand.New(rand.NewSource(99))

	const runs = 4000
	positions := make([]int, quizOptionCount)
	for i := 0; i < runs; i++ {
		quizItems, err := GenerateQuiz(items, rnd)
		require.NoError(t, err)
		for pos, option := range quizItems[0].Options {
			if option == quizItems[0].English {
				positions[pos]++
			}
		}
	}

	// Each position should hold the answer about runs/4 times. Allow a wide
	// tolerance; a sort-by-random-comparator shuffle fails this badly.
	expected := runs / quizOptionCount
	for pos, count := range positions {
		assert.InDelta(t, expected, count, float64(expected)/4,
			"correct answer appears at position %d a suspicious number of times", pos)
	}
}
