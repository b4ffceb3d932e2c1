package matching

import (
	"sort"
)

// Thresholds рекомендуемые пороги схожести для корпуса
type Thresholds struct {
	Low     float64 `json:"low"`
	Medium  float64 `json:"medium"`
	High    float64 `json:"high"`
	Samples int     `json:"samples"`
}

// DefaultThresholds пороги для пустого корпуса или выборки без совпадений
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 0.2, Medium: 0.4, High: 0.6}
}

const (
	// DefaultSampleSize размер выборки по умолчанию
	DefaultSampleSize = 100

	sampleQueries   = 10
	sampleNeighbors = 20
)

// RecommendedThresholds оценивает распределение схожести внутри корпуса и
// возвращает 25-й, 50-й и 75-й процентили положительных оценок.
// Выборка берется с равным шагом по корпусу, поэтому результат детерминирован.
func (idx *Index) RecommendedThresholds(sampleSize int) Thresholds {
	if sampleSize <= 0 || len(idx.docs) < 2 {
		return DefaultThresholds()
	}
	if sampleSize > len(idx.docs) {
		sampleSize = len(idx.docs)
	}

	queries := min(sampleQueries, sampleSize)
	step := len(idx.docs) / queries

	var scores []float64
	for i := 0; i < queries; i++ {
		pos := i * step
		self := pos
		results := idx.search(idx.docs[pos], idx.vectors[pos], 0, sampleNeighbors, func(p int) bool { return p != self })
		for _, r := range results {
			if r.Score > 0 {
				scores = append(scores, r.Score)
			}
		}
	}

	if len(scores) == 0 {
		return DefaultThresholds()
	}

	sort.Float64s(scores)
	return Thresholds{
		Low:     percentile(scores, 25),
		Medium:  percentile(scores, 50),
		High:    percentile(scores, 75),
		Samples: len(scores),
	}
}

// percentile с линейной интерполяцией между соседними рангами, sorted упорядочен
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(rank)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}
