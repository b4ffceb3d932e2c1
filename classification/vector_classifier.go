package classification

import (
	"sort"

	"mdmserver/normalization/algorithms"
)

// VectorScore косинусная близость описания к категории
type VectorScore struct {
	CategoryID string  `json:"category_id"`
	Level      int     `json:"level"`
	Similarity float64 `json:"similarity"`
}

// VectorClassifier сравнивает TF-IDF вектор описания с векторами категорий.
// Векторы категорий строятся один раз из названия и ключевых слов.
type VectorClassifier struct {
	index    *CategoryIndex
	vocab    *algorithms.Vocabulary
	vectors  []algorithms.FeatureVector
	postings *algorithms.InvertedIndex
	floor    float64
}

// NewVectorClassifier обучает словарь по документам категорий.
// floor - нижняя граница схожести, результаты не выше нее отбрасываются.
func NewVectorClassifier(index *CategoryIndex, normalizer *algorithms.TextNormalizer, floor float64) *VectorClassifier {
	docs := make([][]string, index.Len())
	for i := 0; i < index.Len(); i++ {
		docs[i] = CategoryDocument(index.At(i), normalizer)
	}

	vocab := algorithms.Fit(docs)
	vectors := vocab.TransformAll(docs)

	return &VectorClassifier{
		index:    index,
		vocab:    vocab,
		vectors:  vectors,
		postings: algorithms.NewInvertedIndex(vectors, vocab.Size()),
		floor:    floor,
	}
}

// CategoryDocument токены, описывающие категорию: название и ключевые слова
func CategoryDocument(cat *Category, normalizer *algorithms.TextNormalizer) []string {
	tokens := normalizer.Normalize(cat.Name).Tokens
	for _, kw := range cat.keywords {
		tokens = append(tokens, normalizer.Normalize(kw).Tokens...)
	}
	return tokens
}

// Vocabulary словарь категорий
func (vc *VectorClassifier) Vocabulary() *algorithms.Vocabulary {
	return vc.vocab
}

// Vectorize вектор описания в словаре категорий
func (vc *VectorClassifier) Vectorize(n algorithms.NormalizedText) algorithms.FeatureVector {
	return vc.vocab.Transform(n.Tokens)
}

// Classify возвращает категории со схожестью выше floor по убыванию
func (vc *VectorClassifier) Classify(query algorithms.FeatureVector) []VectorScore {
	if query.IsZero() {
		return nil
	}

	board := vc.postings.Score(query)

	var results []VectorScore
	for _, ci := range board.Touched {
		sim := board.Dots[ci]
		if sim <= vc.floor {
			continue
		}
		cat := vc.index.At(ci)
		results = append(results, VectorScore{CategoryID: cat.ID, Level: cat.Level, Similarity: sim})
	}

	sort.Slice(results, func(i, j int) bool {
		return rankBefore(results[i].Similarity, results[j].Similarity,
			results[i].Level, results[j].Level,
			results[i].CategoryID, results[j].CategoryID)
	})
	return results
}
