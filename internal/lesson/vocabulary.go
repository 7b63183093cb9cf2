// Package lesson implements the lesson session core: the vocabulary store,
// the multiple-choice quiz generator, and the session controller state machine
// that presentation layers (HTTP API, terminal practice) drive.
package lesson

import (
	"strings"
	"sync"

	"github.com/lexikid/lexikid/internal/gateway"
)

// VocabularyItem is a single word of the current lesson. English is the
// identity key and is unique within one generated list. HasAudio reports
// whether speech enrichment has completed for snapshots; the audio bytes
// themselves stay inside the store.
type VocabularyItem struct {
	English  string `json:"english"`
	Chinese  string `json:"chinese"`
	Emoji    string `json:"emoji"`
	HasAudio bool   `json:"has_audio"`
}

// VocabularyStore owns the current lesson's word list and its asynchronous
// speech enrichment. Enrichment is keyed by the English word, set at most
// once, and never blocks lesson screens: a missing enrichment falls back to
// the item's emoji on the presentation side.
type VocabularyStore struct {
	mu      sync.Mutex
	items   []VocabularyItem
	audio   map[string][]byte
	pending map[string]struct{}
}

// NewVocabularyStore builds a store from a generated word list. Entries with
// an empty English or Chinese field and repeated English keys are dropped,
// keeping the first occurrence.
func NewVocabularyStore(words []gateway.Word) *VocabularyStore {
	store := &VocabularyStore{
		audio:   make(map[string][]byte),
		pending: make(map[string]struct{}),
	}
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		english := strings.ToLower(strings.TrimSpace(word.English))
		if english == "" || strings.TrimSpace(word.Chinese) == "" {
			continue
		}
		if _, ok := seen[english]; ok {
			continue
		}
		seen[english] = struct{}{}
		store.items = append(store.items, VocabularyItem{
			English: english,
			Chinese: strings.TrimSpace(word.Chinese),
			Emoji:   strings.TrimSpace(word.Emoji),
		})
	}
	return store
}

// Len returns the number of words in the store.
func (store *VocabularyStore) Len() int {
	store.mu.Lock()
	defer store.mu.Unlock()
	return len(store.items)
}

// Items returns a copy of the word list with HasAudio filled in.
func (store *VocabularyStore) Items() []VocabularyItem {
	store.mu.Lock()
	defer store.mu.Unlock()

	items := make([]VocabularyItem, len(store.items))
	copy(items, store.items)
	for i := range items {
		_, items[i].HasAudio = store.audio[items[i].English]
	}
	return items
}

// Contains reports whether the store holds the given English word.
func (store *VocabularyStore) Contains(english string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.indexOf(english) >= 0
}

func (store *VocabularyStore) indexOf(english string) int {
	for i, item := range store.items {
		if item.English == english {
			return i
		}
	}
	return -1
}

// Audio returns the enrichment audio for a word, if present.
func (store *VocabularyStore) Audio(english string) ([]byte, bool) {
	store.mu.Lock()
	defer store.mu.Unlock()
	audio, ok := store.audio[english]
	return audio, ok
}

// BeginFetch claims the single enrichment slot for a word. It returns false
// when the word is unknown, already enriched, or a fetch is already pending,
// so at most one fetch per word is ever in flight.
func (store *VocabularyStore) BeginFetch(english string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	if store.indexOf(english) < 0 {
		return false
	}
	if _, ok := store.audio[english]; ok {
		return false
	}
	if _, ok := store.pending[english]; ok {
		return false
	}
	store.pending[english] = struct{}{}
	return true
}

// CompleteFetch records the enrichment result for a word and releases its
// fetch slot. The first completed fetch wins; later calls are ignored.
func (store *VocabularyStore) CompleteFetch(english string, audio []byte) {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.pending, english)
	if store.indexOf(english) < 0 {
		return
	}
	if _, ok := store.audio[english]; ok {
		return
	}
	store.audio[english] = audio
}

// AbortFetch releases a word's fetch slot without recording a result, so a
// failed fetch can be retried later.
func (store *VocabularyStore) AbortFetch(english string) {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.pending, english)
}
