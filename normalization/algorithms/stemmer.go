package algorithms

import (
	"sync"
	"unicode"

	"github.com/kljensen/snowball"
)

// maxStemCache ограничивает кеш основ, чтобы поток уникальных слов не раздувал память
const maxStemCache = 1 << 16

// RussianStemmer приводит русские слова наименований к основе (Snowball).
// "задвижка", "задвижки" и "задвижку" дают один токен.
type RussianStemmer struct {
	mu    sync.RWMutex
	cache map[string]string
}

// NewRussianStemmer создает стеммер с кешем
func NewRussianStemmer() *RussianStemmer {
	return &RussianStemmer{cache: make(map[string]string)}
}

// Stem возвращает основу слова. Слова не из кириллицы и слишком короткие
// возвращаются как есть.
func (s *RussianStemmer) Stem(word string) string {
	if !isCyrillicWord(word) {
		return word
	}

	s.mu.RLock()
	stem, ok := s.cache[word]
	s.mu.RUnlock()
	if ok {
		return stem
	}

	stem, err := snowball.Stem(word, "russian", true)
	if err != nil || stem == "" {
		stem = word
	}

	s.mu.Lock()
	if len(s.cache) >= maxStemCache {
		s.cache = make(map[string]string)
	}
	s.cache[word] = stem
	s.mu.Unlock()

	return stem
}

// isCyrillicWord true для слов из одной кириллицы длиной от трех букв
func isCyrillicWord(word string) bool {
	n := 0
	for _, r := range word {
		if !unicode.Is(unicode.Cyrillic, r) {
			return false
		}
		n++
	}
	return n >= 3
}
