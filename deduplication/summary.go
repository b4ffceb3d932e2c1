package deduplication

import (
	"mdmserver/internal/domain/material"
)

// Summary сводный отчет по результату дедупликации
type Summary struct {
	TotalRecords      int                              `json:"total_records"`
	TotalClusters     int                              `json:"total_clusters"`
	DuplicateClusters int                              `json:"duplicate_clusters"`
	Singletons        int                              `json:"singletons"`
	RedundantRecords  int                              `json:"redundant_records"`
	AverageSimilarity float64                          `json:"average_similarity"`
	ByLevel           map[material.ConfidenceLevel]int `json:"by_level"`
	ByAction          map[material.MergeAction]int     `json:"by_action"`
	ConflictsByField  map[string]int                   `json:"conflicts_by_field"`
}

// Summarize собирает статистику по кластерам.
// RedundantRecords - сколько записей исчезнет при слиянии всех кластеров.
func Summarize(clusters []material.DedupCluster) Summary {
	s := Summary{
		TotalClusters:    len(clusters),
		ByLevel:          make(map[material.ConfidenceLevel]int),
		ByAction:         make(map[material.MergeAction]int),
		ConflictsByField: make(map[string]int),
	}

	var simSum float64
	for _, c := range clusters {
		s.TotalRecords += len(c.MemberIDs)
		s.ByLevel[c.ConfidenceLevel]++
		s.ByAction[c.RecommendedAction]++
		if c.IsSingleton() {
			s.Singletons++
			continue
		}
		s.DuplicateClusters++
		s.RedundantRecords += len(c.MemberIDs) - 1
		simSum += c.AverageSimilarity
		for field := range c.ConflictingFields {
			s.ConflictsByField[field]++
		}
	}

	if s.DuplicateClusters > 0 {
		s.AverageSimilarity = simSum / float64(s.DuplicateClusters)
	}
	return s
}
