package algorithms

// NGramGenerator режет последовательности рун на N-граммы.
// Сегментатор берет биграммы для иероглифов, которых нет в словаре.
type NGramGenerator struct {
	n int
}

// NewNGramGenerator n < 1 означает биграммы
func NewNGramGenerator(n int) *NGramGenerator {
	if n < 1 {
		n = 2
	}
	return &NGramGenerator{n: n}
}

// Shingles режет последовательность рун на N-граммы без padding.
// Строка короче n возвращается целиком.
func (ng *NGramGenerator) Shingles(runes []rune) []string {
	if len(runes) == 0 {
		return nil
	}
	if len(runes) <= ng.n {
		return []string{string(runes)}
	}
	out := make([]string, 0, len(runes)-ng.n+1)
	for i := 0; i+ng.n <= len(runes); i++ {
		out = append(out, string(runes[i:i+ng.n]))
	}
	return out
}
