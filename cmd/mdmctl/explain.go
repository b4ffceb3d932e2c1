package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mdmserver/internal/domain/material"
)

func explainCommand(opts *options) *cobra.Command {
	var rec material.Record

	cmd := &cobra.Command{
		Use:     "explain",
		Short:   "Показать токены и оценки правил и векторов для записи",
		Example: `  mdmctl explain --name 疏水器 --spec "DN25 PN1.6"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(rec.Name) == "" {
				return errors.New("--name is required")
			}
			eng, _, err := opts.loadEngine(cmd)
			if err != nil {
				return err
			}

			ex := eng.Explain(rec)
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), ex)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Текст:           %s\n", ex.Normalized.Text)
			fmt.Fprintf(out, "Наименование:    %s\n", strings.Join(ex.Normalized.MaterialTokens, " | "))
			fmt.Fprintf(out, "Характеристики:  %s\n", strings.Join(ex.Normalized.SpecTokens, " | "))
			fmt.Fprintf(out, "Полнота:         %s\n\n", score(ex.Outcome.Richness))

			rules := newTable(out, table.Row{"Категория", "Правила", "Ключевые слова", "Характеристики", "Производитель"})
			for _, r := range ex.Rules {
				rules.AppendRow(table.Row{r.CategoryID, score(r.Confidence), strings.Join(r.MatchedKeywords, ", "), r.SpecHits, r.ManufacturerMatch})
			}
			rules.Render()

			vectors := newTable(out, table.Row{"Категория", "Косинус"})
			for _, v := range ex.Vectors {
				vectors.AppendRow(table.Row{v.CategoryID, score(v.Similarity)})
			}
			vectors.Render()

			fused := newTable(out, table.Row{"Категория", "Итог", "Источник"})
			for _, c := range ex.Outcome.Categories {
				fused.AppendRow(table.Row{c.CategoryID, score(c.Confidence), c.Source})
			}
			fused.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&rec.Name, "name", "", "наименование")
	cmd.Flags().StringVar(&rec.Spec, "spec", "", "характеристики")
	cmd.Flags().StringVar(&rec.Manufacturer, "manufacturer", "", "производитель")
	return cmd
}
