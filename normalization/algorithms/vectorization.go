package algorithms

import (
	"math"
	"sort"
)

// Vocabulary замороженный словарь TF-IDF.
// Термины пронумерованы в лексикографическом порядке, после Fit не меняется.
type Vocabulary struct {
	terms    []string
	index    map[string]int
	idf      []float64
	docCount int
}

// FeatureVector разреженный L2-нормированный вектор признаков.
// Indices отсортированы по возрастанию, Values соответствуют им по позиции.
type FeatureVector struct {
	Indices []int
	Values  []float64
}

// Fit строит словарь по корпусу токенизированных документов.
// IDF сглаженный: log((N+1)/(df+1)) + 1
func Fit(corpus [][]string) *Vocabulary {
	df := make(map[string]int)
	for _, doc := range corpus {
		seen := make(map[string]bool, len(doc))
		for _, token := range doc {
			if token == "" || seen[token] {
				continue
			}
			seen[token] = true
			df[token]++
		}
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(corpus))
	vocab := &Vocabulary{
		terms:    terms,
		index:    make(map[string]int, len(terms)),
		idf:      make([]float64, len(terms)),
		docCount: len(corpus),
	}
	for i, term := range terms {
		vocab.index[term] = i
		vocab.idf[i] = math.Log((n+1)/(float64(df[term])+1)) + 1
	}
	return vocab
}

// Size количество терминов в словаре
func (v *Vocabulary) Size() int {
	return len(v.terms)
}

// DocCount количество документов, по которым строился словарь
func (v *Vocabulary) DocCount() int {
	return v.docCount
}

// Term термин по индексу
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Lookup индекс термина; false для слов вне словаря
func (v *Vocabulary) Lookup(term string) (int, bool) {
	i, ok := v.index[term]
	return i, ok
}

// IDF значение обратной частоты термина
func (v *Vocabulary) IDF(i int) float64 {
	return v.idf[i]
}

// Transform строит TF-IDF вектор документа.
// TF = число вхождений, слова вне словаря дают нулевой вклад.
func (v *Vocabulary) Transform(tokens []string) FeatureVector {
	counts := make(map[int]int, len(tokens))
	for _, token := range tokens {
		if i, ok := v.index[token]; ok {
			counts[i]++
		}
	}
	if len(counts) == 0 {
		return FeatureVector{}
	}

	indices := make([]int, 0, len(counts))
	for i := range counts {
		indices = append(indices, i)
	}
	sort.Ints(indices)

	values := make([]float64, len(indices))
	var sumSquares float64
	for k, i := range indices {
		w := float64(counts[i]) * v.idf[i]
		values[k] = w
		sumSquares += w * w
	}

	norm := math.Sqrt(sumSquares)
	for k := range values {
		values[k] /= norm
	}

	return FeatureVector{Indices: indices, Values: values}
}

// TransformAll векторизует набор документов
func (v *Vocabulary) TransformAll(docs [][]string) []FeatureVector {
	out := make([]FeatureVector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}

// IsZero true для вектора без ненулевых компонент
func (fv FeatureVector) IsZero() bool {
	return len(fv.Indices) == 0
}

// Norm L2-норма вектора (1 для непустого, 0 для пустого)
func (fv FeatureVector) Norm() float64 {
	var s float64
	for _, w := range fv.Values {
		s += w * w
	}
	return math.Sqrt(s)
}
