package main

import (
	"errors"
	"sort"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mdmserver/internal/domain/material"
	"mdmserver/matching"
)

func matchCommand(opts *options) *cobra.Command {
	var (
		query      material.Record
		corpusPath string
		threshold  float64
		maxResults int
	)

	cmd := &cobra.Command{
		Use:     "match",
		Short:   "Найти в справочнике записи, похожие на запрос",
		Example: `  mdmctl match --corpus materials.xlsx --name 闸阀 --spec "DN50 PN16" --threshold 0.4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if corpusPath == "" {
				return errors.New("--corpus is required")
			}
			eng, _, err := opts.loadEngine(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("threshold") {
				threshold = eng.Config().DefaultThreshold
			}
			if !cmd.Flags().Changed("max") {
				maxResults = eng.Config().MaxResults
			}

			corpus, err := readCorpus(cmd, corpusPath)
			if err != nil {
				return err
			}
			out, err := eng.FindSimilar(query, corpus, threshold, maxResults)
			if err != nil {
				return err
			}

			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			if out.Invalid {
				cmd.Println("Запрос не обработан:", out.Reason)
				return nil
			}

			byID := make(map[string]material.Record, len(corpus))
			for _, r := range corpus {
				byID[r.ID] = r
			}
			t := newTable(cmd.OutOrStdout(), table.Row{"#", "ID", "Наименование", "Характеристики", "Оценка", "Тип"})
			for i, res := range out.Results {
				r := byID[res.CandidateID]
				t.AppendRow(table.Row{i + 1, res.CandidateID, truncate(r.Name, 30), truncate(r.Spec, 30), score(res.Score), res.MatchType})
			}
			t.AppendFooter(table.Row{"", "Найдено", len(out.Results)})
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "", "справочник xlsx или csv")
	cmd.Flags().StringVar(&query.Name, "name", "", "наименование")
	cmd.Flags().StringVar(&query.Spec, "spec", "", "характеристики")
	cmd.Flags().StringVar(&query.Manufacturer, "manufacturer", "", "производитель")
	cmd.Flags().StringVar(&query.Unit, "unit", "", "единица измерения")
	cmd.Flags().Float64VarP(&threshold, "threshold", "t", 0, "порог схожести [0, 1]")
	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "максимум результатов")
	return cmd
}

type thresholdsReport struct {
	Thresholds    matching.Thresholds `json:"thresholds"`
	TotalRecords  int                 `json:"total_records"`
	CategoryStats map[string]int      `json:"category_stats"`
}

func thresholdsCommand(opts *options) *cobra.Command {
	var (
		corpusPath string
		sampleSize int
	)

	cmd := &cobra.Command{
		Use:   "thresholds",
		Short: "Рекомендованные пороги схожести по справочнику",
		RunE: func(cmd *cobra.Command, args []string) error {
			if corpusPath == "" {
				return errors.New("--corpus is required")
			}
			eng, _, err := opts.loadEngine(cmd)
			if err != nil {
				return err
			}
			corpus, err := readCorpus(cmd, corpusPath)
			if err != nil {
				return err
			}
			idx, err := eng.Index(corpus)
			if err != nil {
				return err
			}

			report := thresholdsReport{
				Thresholds:    idx.RecommendedThresholds(sampleSize),
				TotalRecords:  idx.Len(),
				CategoryStats: idx.CategoryStats(),
			}
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			t := newTable(cmd.OutOrStdout(), table.Row{"Уровень", "Порог"})
			t.AppendRows([]table.Row{
				{"low", score(report.Thresholds.Low)},
				{"medium", score(report.Thresholds.Medium)},
				{"high", score(report.Thresholds.High)},
			})
			t.AppendFooter(table.Row{"Пар в выборке", report.Thresholds.Samples})
			t.Render()

			categories := make([]string, 0, len(report.CategoryStats))
			for c := range report.CategoryStats {
				categories = append(categories, c)
			}
			sort.Strings(categories)
			stats := newTable(cmd.OutOrStdout(), table.Row{"Категория", "Записей"})
			for _, c := range categories {
				stats.AppendRow(table.Row{c, report.CategoryStats[c]})
			}
			stats.AppendFooter(table.Row{"Всего", report.TotalRecords})
			stats.Render()
			return nil
		},
	}

	cmd.Flags().StringVarP(&corpusPath, "corpus", "c", "", "справочник xlsx или csv")
	cmd.Flags().IntVar(&sampleSize, "sample", matching.DefaultSampleSize, "размер выборки")
	return cmd
}
