package main

import (
	"errors"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mdmserver/classification"
	"mdmserver/internal/domain/material"
)

type classifyResult struct {
	ID      string                 `json:"id,omitempty"`
	Name    string                 `json:"name"`
	Outcome classification.Outcome `json:"outcome"`
}

func classifyCommand(opts *options) *cobra.Command {
	var (
		rec   material.Record
		input string
		top   int
	)

	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Рекомендовать категории для записи или файла записей",
		Example: `  mdmctl classify --name 疏水器 --spec "DN25 PN1.6"
  mdmctl classify --input materials.xlsx -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" && strings.TrimSpace(rec.Name) == "" {
				return errors.New("either --name or --input is required")
			}
			eng, _, err := opts.loadEngine(cmd)
			if err != nil {
				return err
			}

			records := []material.Record{rec}
			if input != "" {
				if records, err = readCorpus(cmd, input); err != nil {
					return err
				}
			}

			results := make([]classifyResult, len(records))
			for i, r := range records {
				results[i] = classifyResult{ID: r.ID, Name: r.Name, Outcome: eng.Classify(r)}
			}

			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			t := newTable(cmd.OutOrStdout(), table.Row{"ID", "Наименование", "Категория", "Уверенность", "Источник"})
			for _, res := range results {
				if len(res.Outcome.Categories) == 0 {
					t.AppendRow(table.Row{res.ID, truncate(res.Name, 30), "-", "-", res.Outcome.Reason})
					continue
				}
				for i, c := range res.Outcome.Categories {
					if i >= top {
						break
					}
					t.AppendRow(table.Row{res.ID, truncate(res.Name, 30), c.CategoryName + " (" + c.CategoryID + ")", score(c.Confidence), c.Source})
				}
			}
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&rec.Name, "name", "", "наименование")
	cmd.Flags().StringVar(&rec.Spec, "spec", "", "характеристики")
	cmd.Flags().StringVar(&rec.Manufacturer, "manufacturer", "", "производитель")
	cmd.Flags().StringVar(&rec.Unit, "unit", "", "единица измерения")
	cmd.Flags().StringVarP(&input, "input", "i", "", "файл xlsx или csv")
	cmd.Flags().IntVar(&top, "top", 3, "сколько категорий показывать в таблице")
	return cmd
}
