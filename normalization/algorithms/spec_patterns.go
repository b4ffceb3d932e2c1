package algorithms

import (
	"regexp"
	"sort"
	"strings"
)

// SpecFamily семейство технических характеристик
type SpecFamily string

const (
	FamilyNominalDiameter SpecFamily = "nominal_diameter"
	FamilyPressureRating  SpecFamily = "pressure_rating"
	FamilyThread          SpecFamily = "thread"
	FamilyMaterialGrade   SpecFamily = "material_grade"
	FamilyDimension       SpecFamily = "dimension"
	FamilyLength          SpecFamily = "length"
	FamilyTemperature     SpecFamily = "temperature"
)

// SpecPattern одна строка декларативной таблицы характеристик.
// Priority: меньшее значение извлекается раньше и не может быть перекрыто.
type SpecPattern struct {
	Family   SpecFamily
	Priority int
	Expr     string
	re       *regexp.Regexp
}

// SpecMatch найденная характеристика с позицией в нормализованном тексте
type SpecMatch struct {
	Family SpecFamily `json:"family"`
	Token  string     `json:"token"`
	Start  int        `json:"start"`
	End    int        `json:"end"`
}

// SpecPatternTable упорядоченная таблица шаблонов характеристик
type SpecPatternTable struct {
	patterns []SpecPattern
}

// DefaultSpecPatterns таблица по умолчанию для трубопроводной арматуры,
// крепежа и металлопроката. Выражения применяются к тексту после cleanText,
// поэтому латиница уже в нижнем регистре, а пробелы схлопнуты.
func DefaultSpecPatterns() []SpecPattern {
	return []SpecPattern{
		// Условный проход: DN25, DN50*25, Φ14
		{Family: FamilyNominalDiameter, Priority: 1, Expr: `dn ?\d+(?: ?[*x×] ?\d+)?`},
		{Family: FamilyNominalDiameter, Priority: 1, Expr: `[φøф] ?\d+(?:\.\d+)?`},

		// Давление: PN1.6, PN16, CL150, 1.6MPa, 150LB
		{Family: FamilyPressureRating, Priority: 2, Expr: `pn ?\d+(?:\.\d+)?`},
		{Family: FamilyPressureRating, Priority: 2, Expr: `cl(?:ass)? ?\d+`},
		{Family: FamilyPressureRating, Priority: 2, Expr: `\d+(?:\.\d+)? ?(?:mpa|kpa|bar)`},
		{Family: FamilyPressureRating, Priority: 2, Expr: `\d+ ?lb`},

		// Резьба: M20*2.5, 1/2"NPT, G1/2, Rc3/4
		{Family: FamilyThread, Priority: 3, Expr: `m\d+(?:\.\d+)?(?: ?[*x×] ?\d+(?:\.\d+)?)?`},
		{Family: FamilyThread, Priority: 3, Expr: `\d+(?:/\d+)?"? ?npt`},
		{Family: FamilyThread, Priority: 3, Expr: `(?:g|rc|r)\d+(?:/\d+)?`},

		// Марка материала
		{Family: FamilyMaterialGrade, Priority: 4, Expr: `[01]?cr\d+ni\d+(?:mo\d+)?(?:ti)?`},
		{Family: FamilyMaterialGrade, Priority: 4, Expr: `(?:sus|ss)?(?:304|316|321|310|904|201|202)(?:l|s|h)?`},
		{Family: FamilyMaterialGrade, Priority: 4, Expr: `q\d{3}[a-e]?`},
		{Family: FamilyMaterialGrade, Priority: 4, Expr: `a\d{3}(?:f\d+)?`},
		{Family: FamilyMaterialGrade, Priority: 4, Expr: `\d{2}#`},
		{Family: FamilyMaterialGrade, Priority: 4, Expr: `wc[bc]|cf8m?|cf3m?|ptfe|hdpe|ppr|pvc`},
		{Family: FamilyMaterialGrade, Priority: 4, Expr: `不锈钢|碳钢|合金钢|铸钢|锻钢|球墨铸铁|铸铁|黄铜|紫铜|铝合金|钛合金|镀锌|镀镍|阳极氧化|涂塑|四氟`},

		// Габариты: 100x50x3
		{Family: FamilyDimension, Priority: 5, Expr: `\d+(?:\.\d+)?(?: ?[*x×] ?\d+(?:\.\d+)?){1,3}(?: ?mm)?`},

		// Длина: L=3m, 500mm, 10米
		{Family: FamilyLength, Priority: 6, Expr: `l ?= ?\d+(?:\.\d+)? ?(?:mm|m|米)?`},
		{Family: FamilyLength, Priority: 6, Expr: `\d+(?:\.\d+)? ?(?:mm|cm|毫米|米|m)`},

		// Температура: 100-180℃ (после NFKC знак ℃ превращается в °c)
		{Family: FamilyTemperature, Priority: 7, Expr: `-?\d+(?:\.\d+)?(?: ?[-~] ?-?\d+(?:\.\d+)?)? ?(?:°c|℃)`},
	}
}

// NewSpecPatternTable компилирует таблицу и упорядочивает её по приоритету.
// Порядок строк с равным приоритетом сохраняется.
func NewSpecPatternTable(patterns []SpecPattern) (*SpecPatternTable, error) {
	compiled := make([]SpecPattern, len(patterns))
	for i, p := range patterns {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return nil, &PatternError{Family: p.Family, Expr: p.Expr, Err: err}
		}
		p.re = re
		compiled[i] = p
	}
	sort.SliceStable(compiled, func(i, j int) bool {
		return compiled[i].Priority < compiled[j].Priority
	})
	return &SpecPatternTable{patterns: compiled}, nil
}

// MustSpecPatternTable то же, что NewSpecPatternTable, но паникует при ошибке.
// Используется только для встроенной таблицы.
func MustSpecPatternTable(patterns []SpecPattern) *SpecPatternTable {
	table, err := NewSpecPatternTable(patterns)
	if err != nil {
		panic(err)
	}
	return table
}

// PatternError ошибка компиляции шаблона характеристики
type PatternError struct {
	Family SpecFamily
	Expr   string
	Err    error
}

func (e *PatternError) Error() string {
	return "invalid spec pattern " + string(e.Family) + " " + e.Expr + ": " + e.Err.Error()
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// Families возвращает семейства таблицы в порядке приоритета без повторов
func (t *SpecPatternTable) Families() []SpecFamily {
	seen := make(map[SpecFamily]bool)
	var out []SpecFamily
	for _, p := range t.patterns {
		if !seen[p.Family] {
			seen[p.Family] = true
			out = append(out, p.Family)
		}
	}
	return out
}

// Extract извлекает характеристики из очищенного текста.
// Возвращает совпадения в порядке следования в тексте.
func (t *SpecPatternTable) Extract(text string) []SpecMatch {
	if text == "" {
		return nil
	}

	claimed := make([]bool, len(text))
	var matches []SpecMatch

	for _, p := range t.patterns {
		for _, loc := range p.re.FindAllStringIndex(text, -1) {
			start, end := loc[0], loc[1]
			if isClaimed(claimed, start, end) || !atTokenBoundary(text, start, end) {
				continue
			}
			for i := start; i < end; i++ {
				claimed[i] = true
			}
			matches = append(matches, SpecMatch{
				Family: p.Family,
				Token:  canonicalSpecToken(p.Family, text[start:end]),
				Start:  start,
				End:    end,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Start < matches[j].Start
	})
	return matches
}

func isClaimed(claimed []bool, start, end int) bool {
	for i := start; i < end; i++ {
		if claimed[i] {
			return true
		}
	}
	return false
}

// atTokenBoundary не даёт шаблону выхватить середину латинского слова или числа:
// "sdn25" не содержит DN, "3040" не содержит марку 304.
func atTokenBoundary(text string, start, end int) bool {
	first := text[start]
	if start > 0 {
		prev := text[start-1]
		switch {
		case isASCIILetter(first) && isASCIILetter(prev):
			return false
		case isASCIIDigit(first) && (isASCIILetter(prev) || isASCIIDigit(prev) || prev == '.'):
			return false
		}
	}
	last := text[end-1]
	if end < len(text) {
		next := text[end]
		switch {
		case isASCIIDigit(last) && isASCIIDigit(next):
			return false
		case isASCIILetter(last) && isASCIILetter(next):
			return false
		}
	}
	return true
}

func isASCIILetter(b byte) bool { return b >= 'a' && b <= 'z' }

func isASCIIDigit(b byte) bool { return b >= '0' && b <= '9' }

// canonicalSpecToken убирает пробелы и приводит разделители к единому виду,
// чтобы "DN 50×25" и "dn50*25" давали один токен
func canonicalSpecToken(family SpecFamily, raw string) string {
	token := strings.ReplaceAll(raw, " ", "")
	token = strings.ReplaceAll(token, "×", "*")
	switch family {
	case FamilyNominalDiameter, FamilyDimension, FamilyThread:
		token = replaceDigitX(token)
	case FamilyTemperature:
		token = strings.ReplaceAll(token, "°c", "℃")
	}
	return token
}

// replaceDigitX заменяет x между цифрами на *
func replaceDigitX(s string) string {
	b := []byte(s)
	for i := 1; i+1 < len(b); i++ {
		if b[i] == 'x' && isASCIIDigit(b[i-1]) && isASCIIDigit(b[i+1]) {
			b[i] = '*'
		}
	}
	return string(b)
}
