package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mdmserver/classification"
)

func categoriesCommand(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Работа со справочником категорий",
	}

	validate := &cobra.Command{
		Use:   "validate FILE",
		Short: "Проверить справочник категорий",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := classification.LoadCategoryIndex(args[0])
			if err != nil {
				return err
			}
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"valid": true, "categories": idx.Len()})
			}

			t := newTable(cmd.OutOrStdout(), table.Row{"ID", "Наименование", "Уровень", "Ключевых слов"})
			for _, def := range idx.Definitions() {
				t.AppendRow(table.Row{def.ID, def.Name, def.Level, len(def.Keywords)})
			}
			t.AppendFooter(table.Row{"Всего", idx.Len()})
			t.Render()
			return nil
		},
	}

	dump := &cobra.Command{
		Use:   "dump",
		Short: "Вывести действующий справочник в YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, _, err := opts.loadEngine(cmd)
			if err != nil {
				return err
			}
			cfg := &classification.CategoryConfig{Categories: eng.Categories().Definitions()}
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), cfg)
			}
			doc, err := cfg.MarshalDocument()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(doc)
			return err
		},
	}

	cmd.AddCommand(validate, dump)
	return cmd
}
