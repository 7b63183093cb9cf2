package lesson

import (
	"errors"
	"math/rand"
)

// quizOptionCount is the target number of choices per quiz item: the answer
// plus three distractors. Lists with fewer than three other words degrade to
// fewer options rather than failing.
const quizOptionCount = 4

// ErrNotEnoughWords is returned when a word list is too small to build a
// multiple-choice quiz. At least one distractor must exist, so two words is
// the floor.
var ErrNotEnoughWords = errors.New("lesson: not enough words for a quiz")

// QuizItem is a vocabulary item plus its shuffled multiple-choice options.
// Exactly one option equals the item's English word. Never mutated after
// creation.
type QuizItem struct {
	VocabularyItem
	Options []string `json:"options"`
}

// GenerateQuiz derives one quiz item per vocabulary item. Distractors are
// sampled uniformly without replacement from the other words in the list, and
// the final option order is a uniform permutation, so the correct answer has
// no positional bias. The input list is never mutated.
func GenerateQuiz(items []VocabularyItem, rnd *rand.Rand) ([]QuizItem, error) {
	if len(items) < 2 {
		return nil, ErrNotEnoughWords
	}

	quizItems := make([]QuizItem, 0, len(items))
	for i, item := range items {
		others := make([]string, 0, len(items)-1)
		for j, other := range items {
			if j != i {
				others = append(others, other.English)
			}
		}
		rnd.Shuffle(len(others), func(a, b int) {
			others[a], others[b] = others[b], others[a]
		})

		distractorCount := quizOptionCount - 1
		if len(others) < distractorCount {
			distractorCount = len(others)
		}

		options := make([]string, 0, distractorCount+1)
		options = append(options, item.English)
		options = append(options, others[:distractorCount]...)
		rnd.Shuffle(len(options), func(a, b int) {
			options[a], options[b] = options[b], options[a]
		})

		quizItems = append(quizItems, QuizItem{
			VocabularyItem: item,
			Options:        options,
		})
	}
	return quizItems, nil
}
