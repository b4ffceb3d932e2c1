package algorithms

import (
	"unicode"
	"unicode/utf8"
)

// Segmenter делит очищенный текст на токены.
// Китайские фрагменты режутся прямым максимальным сопоставлением по словарю,
// неизвестные участки разбиваются на биграммы. Латиница и цифры идут целыми словами,
// русские слова приводятся к основе.
type Segmenter struct {
	words   map[string]struct{}
	maxLen  int
	bigrams *NGramGenerator
	stemmer *RussianStemmer
}

// NewSegmenter создает сегментатор со встроенным словарем и дополнительными словами
func NewSegmenter(extra ...string) *Segmenter {
	s := &Segmenter{
		words:   make(map[string]struct{}, len(defaultLexicon)+len(extra)),
		bigrams: NewNGramGenerator(2),
		stemmer: NewRussianStemmer(),
	}
	for _, w := range defaultLexicon {
		s.add(w)
	}
	for _, w := range extra {
		s.add(w)
	}
	return s
}

func (s *Segmenter) add(word string) {
	word = cleanText(word)
	if word == "" {
		return
	}
	s.words[word] = struct{}{}
	if n := utf8.RuneCountInString(word); n > s.maxLen {
		s.maxLen = n
	}
}

// Segment возвращает токены в порядке следования в тексте
func (s *Segmenter) Segment(text string) []string {
	var tokens []string
	var run []rune
	runIsHan := false

	flush := func() {
		if len(run) == 0 {
			return
		}
		if runIsHan {
			tokens = append(tokens, s.segmentHan(run)...)
		} else {
			tokens = append(tokens, s.stemmer.Stem(string(run)))
		}
		run = run[:0]
	}

	for _, r := range text {
		switch {
		case unicode.Is(unicode.Han, r):
			if !runIsHan {
				flush()
				runIsHan = true
			}
			run = append(run, r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if runIsHan {
				flush()
				runIsHan = false
			}
			run = append(run, r)
		default:
			flush()
		}
	}
	flush()

	return tokens
}

// segmentHan прямое максимальное сопоставление: на каждой позиции берется
// самое длинное словарное слово, остаток копится и режется на биграммы
func (s *Segmenter) segmentHan(run []rune) []string {
	var tokens []string
	var unknown []rune

	flushUnknown := func() {
		tokens = append(tokens, s.bigrams.Shingles(unknown)...)
		unknown = unknown[:0]
	}

	for i := 0; i < len(run); {
		matched := 0
		for l := min(s.maxLen, len(run)-i); l >= 1; l-- {
			if _, ok := s.words[string(run[i:i+l])]; ok {
				matched = l
				break
			}
		}
		if matched == 0 {
			unknown = append(unknown, run[i])
			i++
			continue
		}
		flushUnknown()
		tokens = append(tokens, string(run[i:i+matched]))
		i += matched
	}
	flushUnknown()

	return tokens
}
