package lesson

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexikid/lexikid/internal/gateway"
)

func TestNewVocabularyStore_Dedupes(t *testing.T) {
	store := NewVocabularyStore([]gateway.Word{
		{English: "Dog", Chinese: "狗", Emoji: "🐶"},
		{English: "dog", Chinese: "小狗", Emoji: "🐶"},
		{English: "", Chinese: "空", Emoji: ""},
		{English: "cat", Chinese: "", Emoji: "🐱"},
		{English: "cat", Chinese: "猫", Emoji: "🐱"},
	})

	items := store.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "dog", items[0].English)
	assert.Equal(t, "狗", items[0].Chinese, "first occurrence wins")
	assert.Equal(t, "cat", items[1].English)
}

func TestVocabularyStore_EnrichmentSetOnce(t *testing.T) {
	store := NewVocabularyStore([]gateway.Word{
		{English: "dog", Chinese: "狗", Emoji: "🐶"},
		{English: "cat", Chinese: "猫", Emoji: "🐱"},
	})

	require.True(t, store.BeginFetch("dog"))
	assert.False(t, store.BeginFetch("dog"), "fetch already pending")

	store.CompleteFetch("dog", []byte("first"))
	audio, ok := store.Audio("dog")
	require.True(t, ok)
	assert.Equal(t, []byte("first"), audio)

	// A later result never overwrites the enrichment.
	store.CompleteFetch("dog", []byte("second"))
	audio, _ = store.Audio("dog")
	assert.Equal(t, []byte("first"), audio)

	assert.False(t, store.BeginFetch("dog"), "already enriched")
	assert.False(t, store.BeginFetch("bird"), "unknown word")
}

func TestVocabularyStore_AbortFetchReleasesSlot(t *testing.T) {
	store := NewVocabularyStore([]gateway.Word{
		{English: "dog", Chinese: "狗", Emoji: "🐶"},
	})

	require.True(t, store.BeginFetch("dog"))
	store.AbortFetch("dog")
	assert.True(t, store.BeginFetch("dog"), "slot released after abort")
}

func TestVocabularyStore_ItemsIsACopy(t *testing.T) {
	store := NewVocabularyStore([]gateway.Word{
		{English: "dog", Chinese: "狗", Emoji: "🐶"},
	})

	items := store.Items()
	items[0].English = "mutated"
	assert.Equal(t, "dog", store.Items()[0].English)
}
