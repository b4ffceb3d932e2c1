package deduplication

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"mdmserver/internal/domain/material"
	"mdmserver/normalization/algorithms"
)

// Fingerprint канонические отпечатки полей записи. Записи с одинаковым
// отпечатком поля считаются равными по этому полю даже при разном написании.
type Fingerprint struct {
	Name         string `json:"name"`
	Spec         string `json:"spec"`
	Manufacturer string `json:"manufacturer"`
	Unit         string `json:"unit"`
}

// Слова, не влияющие на смысл наименования
var nameNoise = []string{"牌", "型", "式", "种", "个", "只", "根", "条", "块", "片"}

// Суффиксы организационно-правовой формы, длинные раньше коротких.
// Латинские удаляются только как отдельные слова.
var (
	manufacturerSuffixes = []string{"股份有限公司", "有限公司", "公司", "厂"}
	manufacturerWords    = map[string]bool{"ltd": true, "inc": true, "co": true, "corp": true, "gmbh": true}
)

var (
	specNumber     = regexp.MustCompile(`\d+(?:\.\d+)?`)
	specUnit       = regexp.MustCompile(`mm|cm|kg|ml|mpa|bar|℃|°c|m|g|l`)
	specIdentifier = regexp.MustCompile(`dn|pn|cl|φ|直径|长|宽|高`)
)

// Группы взаимозаменяемых единиц измерения
var unitGroups = map[string][]string{
	"pcs": {"个", "只", "件", "套", "pcs", "pc"},
	"kg":  {"kg", "千克", "公斤", "kgs"},
	"g":   {"g", "克", "公克"},
	"m":   {"m", "米", "公尺"},
	"l":   {"l", "升", "公升", "liter"},
}

var unitCanon = func() map[string]string {
	out := make(map[string]string)
	for canon, variants := range unitGroups {
		for _, v := range variants {
			out[v] = canon
		}
	}
	return out
}()

// NewFingerprint вычисляет отпечатки записи
func NewFingerprint(rec material.Record) Fingerprint {
	return Fingerprint{
		Name:         NameFingerprint(rec.Name),
		Spec:         SpecFingerprint(rec.Spec),
		Manufacturer: ManufacturerFingerprint(rec.Manufacturer),
		Unit:         CanonicalUnit(rec.Unit),
	}
}

// NameFingerprint наименование без шумовых слов, фрагменты в алфавитном порядке
func NameFingerprint(name string) string {
	s := algorithms.CleanText(name)
	for _, w := range nameNoise {
		s = strings.ReplaceAll(s, w, " ")
	}
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	sort.Strings(parts)
	return strings.Join(parts, "")
}

// SpecFingerprint числа, единицы и обозначения характеристик в отсортированном виде
func SpecFingerprint(spec string) string {
	s := algorithms.CleanText(spec)
	if s == "" {
		return ""
	}
	var features []string
	features = append(features, specNumber.FindAllString(s, -1)...)
	letters := specNumber.ReplaceAllString(s, " ")
	features = append(features, specIdentifier.FindAllString(letters, -1)...)
	features = append(features, specUnit.FindAllString(specIdentifier.ReplaceAllString(letters, " "), -1)...)
	sort.Strings(features)
	return strings.Join(features, "")
}

// ManufacturerFingerprint название производителя без суффиксов и знаков
func ManufacturerFingerprint(manufacturer string) string {
	s := algorithms.CleanText(manufacturer)
	for _, suffix := range manufacturerSuffixes {
		s = strings.ReplaceAll(s, suffix, "")
	}
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if !manufacturerWords[strings.Trim(w, ".")] {
			kept = append(kept, w)
		}
	}
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return -1
	}, strings.Join(kept, ""))
}

// CanonicalUnit приводит единицу измерения к представителю группы
func CanonicalUnit(unit string) string {
	u := algorithms.CleanText(unit)
	if canon, ok := unitCanon[u]; ok {
		return canon
	}
	return u
}

// SameUnit единицы совпадают с учетом групп взаимозаменяемости
func SameUnit(a, b string) bool {
	ca, cb := CanonicalUnit(a), CanonicalUnit(b)
	return ca != "" && ca == cb
}

// fieldFingerprint отпечаток значения поля для сравнения в отчете о конфликтах
func fieldFingerprint(field, value string) string {
	switch field {
	case material.FieldName:
		return NameFingerprint(value)
	case material.FieldSpec:
		return SpecFingerprint(value)
	case material.FieldManufacturer:
		return ManufacturerFingerprint(value)
	case material.FieldUnit:
		return CanonicalUnit(value)
	}
	return algorithms.CleanText(value)
}

// DimensionWeights веса измерений при сравнении двух записей
type DimensionWeights struct {
	Name         float64 `json:"name"`
	Spec         float64 `json:"spec"`
	Manufacturer float64 `json:"manufacturer"`
	Type         float64 `json:"type"`
	Unit         float64 `json:"unit"`
}

// DefaultDimensionWeights наименование важнее всего, единица измерения меньше всего
func DefaultDimensionWeights() DimensionWeights {
	return DimensionWeights{Name: 0.35, Spec: 0.25, Manufacturer: 0.15, Type: 0.10, Unit: 0.05}
}

// DimensionScores сходство двух записей по отдельным полям
type DimensionScores struct {
	Name         float64 `json:"name"`
	Spec         float64 `json:"spec"`
	Manufacturer float64 `json:"manufacturer"`
	Type         float64 `json:"type"`
	Unit         float64 `json:"unit"`
	Overall      float64 `json:"overall"`
}

var editDistance = algorithms.NewDamerauLevenshtein()

// CompareRecords сравнивает записи по отпечаткам полей. Пустое поле у
// любой из записей не участвует в итоговой оценке.
func CompareRecords(a, b material.Record, w DimensionWeights) DimensionScores {
	fa, fb := NewFingerprint(a), NewFingerprint(b)

	var scores DimensionScores
	var sum, weight float64
	add := func(score *float64, va, vb string, dimWeight float64, similarity func(x, y string) float64) {
		if va == "" || vb == "" {
			return
		}
		*score = similarity(va, vb)
		sum += dimWeight * *score
		weight += dimWeight
	}

	add(&scores.Name, fa.Name, fb.Name, w.Name, editDistance.Similarity)
	add(&scores.Spec, fa.Spec, fb.Spec, w.Spec, editDistance.Similarity)
	add(&scores.Manufacturer, fa.Manufacturer, fb.Manufacturer, w.Manufacturer, editDistance.Similarity)
	add(&scores.Type, strings.TrimSpace(a.Category), strings.TrimSpace(b.Category), w.Type, equalScore)
	add(&scores.Unit, fa.Unit, fb.Unit, w.Unit, equalScore)

	if weight > 0 {
		scores.Overall = algorithms.Clamp01(sum / weight)
	}
	return scores
}

func equalScore(a, b string) float64 {
	if strings.EqualFold(a, b) {
		return 1
	}
	return 0
}
