package algorithms

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// NormalizedText результат нормализации описания МТР
type NormalizedText struct {
	// Text канонический очищенный текст, по нему проверяется точное совпадение
	Text string `json:"text"`
	// Tokens = MaterialTokens ++ SpecTokens
	Tokens []string `json:"tokens"`
	// SpecTokens технические характеристики в порядке следования
	SpecTokens []string `json:"spec_tokens"`
	// MaterialTokens слова наименования после удаления характеристик
	MaterialTokens []string `json:"material_tokens"`
	// Specs характеристики с семействами и позициями в Text
	Specs []SpecMatch `json:"specs"`
}

// IsEmpty true, если в тексте не осталось ни одного токена
func (n NormalizedText) IsEmpty() bool {
	return len(n.Tokens) == 0
}

// SpecFamilies количество характеристик по семействам
func (n NormalizedText) SpecFamilies() map[SpecFamily]int {
	out := make(map[SpecFamily]int, len(n.Specs))
	for _, m := range n.Specs {
		out[m.Family]++
	}
	return out
}

// TextNormalizer нормализует описания МТР. Не имеет изменяемого состояния
// и может использоваться из нескольких горутин.
type TextNormalizer struct {
	specs     *SpecPatternTable
	segmenter *Segmenter
}

// NewTextNormalizer создает нормализатор со встроенной таблицей характеристик.
// lexicon дополняет встроенный словарь сегментатора.
func NewTextNormalizer(lexicon ...string) *TextNormalizer {
	return &TextNormalizer{
		specs:     MustSpecPatternTable(DefaultSpecPatterns()),
		segmenter: NewSegmenter(lexicon...),
	}
}

// Normalize выполняет полную нормализацию текста
func (tn *TextNormalizer) Normalize(raw string) NormalizedText {
	// 1. Unicode NFKC, полуширинные формы, нижний регистр, чистка пунктуации
	text := cleanText(raw)
	if text == "" {
		return NormalizedText{}
	}

	// 2. Извлечение характеристик по таблице приоритетов
	specs := tn.specs.Extract(text)
	specTokens := make([]string, len(specs))
	for i, m := range specs {
		specTokens[i] = m.Token
	}

	// 3. Остаток без характеристик режется на слова наименования
	materialTokens := tn.segmenter.Segment(blankOut(text, specs))

	tokens := make([]string, 0, len(materialTokens)+len(specTokens))
	tokens = append(tokens, materialTokens...)
	tokens = append(tokens, specTokens...)

	return NormalizedText{
		Text:           text,
		Tokens:         tokens,
		SpecTokens:     specTokens,
		MaterialTokens: materialTokens,
		Specs:          specs,
	}
}

// Segment режет произвольную строку на токены тем же сегментатором
func (tn *TextNormalizer) Segment(raw string) []string {
	return tn.segmenter.Segment(cleanText(raw))
}

// CleanText возвращает канонический очищенный текст без токенизации.
// Ключевые слова и шаблоны категорий сопоставляются именно с этой формой.
func CleanText(raw string) string {
	return cleanText(raw)
}

// cleanText приводит строку к канонической форме:
// NFKC, полуширинные символы, нижний регистр, один пробел между словами.
// Внутри кодов характеристик сохраняются . * / # = - ~ × °
func cleanText(raw string) string {
	s := norm.NFKC.String(raw)
	s = width.Fold.String(s)
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	pendingSpace := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || isSpecRune(r) {
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
			continue
		}
		// Пробелы, управляющие символы и прочая пунктуация становятся разделителем
		pendingSpace = true
	}
	return b.String()
}

func isSpecRune(r rune) bool {
	switch r {
	case '.', '*', '/', '#', '=', '-', '~', '×', '°', '℃':
		return true
	}
	return false
}

// blankOut заменяет извлеченные характеристики пробелами, сохраняя позиции
func blankOut(text string, specs []SpecMatch) string {
	if len(specs) == 0 {
		return text
	}
	b := []byte(text)
	for _, m := range specs {
		for i := m.Start; i < m.End; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}
