package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mdmserver/deduplication"
	"mdmserver/internal/domain/material"
)

type dedupOutput struct {
	Summary  deduplication.Summary   `json:"summary"`
	Clusters []material.DedupCluster `json:"clusters"`
}

func dedupCommand(opts *options) *cobra.Command {
	var (
		input      string
		threshold  float64
		exportPath string
		showAll    bool
	)

	cmd := &cobra.Command{
		Use:   "dedup",
		Short: "Найти кластеры дубликатов в файле справочника",
		Example: `  mdmctl dedup --input materials.xlsx --threshold 0.8
  mdmctl dedup --input materials.csv --export duplicates.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return errors.New("--input is required")
			}
			eng, _, err := opts.loadEngine(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = eng.Config().DefaultThreshold
			}

			records, err := readCorpus(cmd, input)
			if err != nil {
				return err
			}
			clusters, err := eng.Deduplicate(records, threshold)
			if err != nil {
				return err
			}
			summary := deduplication.Summarize(clusters)

			if exportPath != "" {
				if err := exportClusters(exportPath, clusters, records); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "кластеры выгружены в %s\n", exportPath)
			}

			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), dedupOutput{Summary: summary, Clusters: clusters})
			}

			byID := make(map[string]material.Record, len(records))
			for _, r := range records {
				byID[r.ID] = r
			}
			t := newTable(cmd.OutOrStdout(), table.Row{"Кластер", "Эталон", "Наименование", "Записей", "Схожесть", "Уровень", "Действие"})
			for _, c := range clusters {
				if c.IsSingleton() && !showAll {
					continue
				}
				rep := byID[c.RepresentativeID]
				t.AppendRow(table.Row{
					c.ClusterID[:8], c.RepresentativeID, truncate(rep.Name+" "+rep.Spec, 40),
					len(c.MemberIDs), score(c.AverageSimilarity), c.ConfidenceLevel, c.RecommendedAction,
				})
			}
			t.AppendFooter(table.Row{"Итого", "", fmt.Sprintf("записей %d", summary.TotalRecords), summary.DuplicateClusters, "", "", fmt.Sprintf("лишних %d", summary.RedundantRecords)})
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "файл xlsx или csv")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "порог схожести [0, 1]")
	cmd.Flags().StringVar(&exportPath, "export", "", "выгрузить кластеры в файл (.xlsx, .csv, .json)")
	cmd.Flags().BoolVar(&showAll, "all", false, "показывать одиночные записи")
	return cmd
}

func exportClusters(path string, clusters []material.DedupCluster, records []material.Record) error {
	format, err := deduplication.ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := deduplication.Export(f, format, clusters, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
