package deduplication

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"mdmserver/internal/domain/material"
	"mdmserver/matching"
	"mdmserver/normalization/algorithms"
)

// clusterNamespace пространство имен для детерминированных ID кластеров
var clusterNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("mdmserver/dedup-cluster"))

// Levels границы средней схожести для уровней уверенности
type Levels struct {
	High   float64 `json:"high"`
	Medium float64 `json:"medium"`
}

// DefaultLevels от 0.85 объединять автоматически, от 0.65 проверять вручную
func DefaultLevels() Levels {
	return Levels{High: 0.85, Medium: 0.65}
}

// Classify уровень уверенности и действие для кластера из нескольких записей
func (l Levels) Classify(avg float64) (material.ConfidenceLevel, material.MergeAction) {
	switch {
	case avg >= l.High:
		return material.ConfidenceHigh, material.ActionAutoMerge
	case avg >= l.Medium:
		return material.ConfidenceMedium, material.ActionManualReview
	default:
		return material.ConfidenceLow, material.ActionSeparate
	}
}

// Engine группирует записи пакета в кластеры дубликатов
type Engine struct {
	normalizer *algorithms.TextNormalizer
	weights    matching.Weights
	levels     Levels
}

// NewEngine создает движок дедупликации с теми же весами, что и поиск похожих
func NewEngine(normalizer *algorithms.TextNormalizer, weights matching.Weights, levels Levels) *Engine {
	return &Engine{normalizer: normalizer, weights: weights, levels: levels}
}

// Deduplicate разбивает пакет на кластеры. Каждая запись попадает ровно в
// один кластер, одиночные записи образуют одиночные кластеры.
//
// Записи обходятся в порядке ID. Очередная непосещенная запись становится
// затравкой, к ней присоединяются все непосещенные записи со схожестью не
// ниже порога.
func (e *Engine) Deduplicate(records []material.Record, threshold float64) ([]material.DedupCluster, error) {
	if err := material.ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []material.DedupCluster{}, nil
	}

	idx, err := matching.NewIndex(records, e.normalizer, e.weights)
	if err != nil {
		return nil, err
	}

	visited := make([]bool, idx.Len())
	allow := func(pos int) bool { return !visited[pos] }

	var clusters []material.DedupCluster
	for seed := 0; seed < idx.Len(); seed++ {
		if visited[seed] {
			continue
		}
		visited[seed] = true

		hits, err := idx.SimilarTo(seed, threshold, allow)
		if err != nil {
			return nil, err
		}

		positions := []int{seed}
		for _, h := range hits {
			pos, _ := idx.Position(h.CandidateID)
			visited[pos] = true
			positions = append(positions, pos)
		}
		sort.Ints(positions)

		clusters = append(clusters, e.buildCluster(idx, positions))
	}
	return clusters, nil
}

// buildCluster позиции индекса упорядочены по ID, поэтому и участники тоже
func (e *Engine) buildCluster(idx *matching.Index, positions []int) material.DedupCluster {
	members := make([]material.Record, len(positions))
	ids := make([]string, len(positions))
	for i, pos := range positions {
		members[i] = idx.Record(pos)
		ids[i] = members[i].ID
	}

	cluster := material.DedupCluster{
		ClusterID:         ClusterID(ids),
		MemberIDs:         ids,
		RepresentativeID:  chooseRepresentative(members),
		ConflictingFields: conflictingFields(members),
	}

	if len(positions) == 1 {
		cluster.ConfidenceLevel = material.ConfidenceSingle
		cluster.RecommendedAction = material.ActionKeep
		return cluster
	}

	cluster.AverageSimilarity = averagePairScore(idx, positions)
	cluster.ConfidenceLevel, cluster.RecommendedAction = e.levels.Classify(cluster.AverageSimilarity)
	return cluster
}

func averagePairScore(idx *matching.Index, positions []int) float64 {
	total, pairs := 0.0, 0
	for i := 0; i < len(positions); i++ {
		for j := i + 1; j < len(positions); j++ {
			total += idx.PairScore(positions[i], positions[j])
			pairs++
		}
	}
	if pairs == 0 {
		return 0
	}
	return total / float64(pairs)
}

// ClusterID детерминированный идентификатор по отсортированным ID участников
func ClusterID(memberIDs []string) string {
	ids := append([]string(nil), memberIDs...)
	sort.Strings(ids)
	return uuid.NewSHA1(clusterNamespace, []byte(strings.Join(ids, "\x00"))).String()
}
