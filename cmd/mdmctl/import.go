package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mdmserver/database"
	"mdmserver/internal/config"
)

type importOutput struct {
	BatchID  string `json:"batch_id"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
	Total    int    `json:"total"`
}

func importCommand(opts *options) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Загрузить записи из xlsx или csv в базу справочника",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				cfg, err := config.LoadConfig()
				if err != nil {
					return err
				}
				dbPath = cfg.DatabasePath
			}

			parsed, err := readMaterials(args[0])
			if err != nil {
				return err
			}
			for _, issue := range parsed.Skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "строка %d пропущена: %s\n", issue.Row, issue.Reason)
			}

			db, err := database.NewMasterDataDB(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			batchID, err := db.UpsertMaterials(cmd.Context(), parsed.Records, parsed.BatchID)
			if err != nil {
				return err
			}
			_, total, err := db.ListMaterials(cmd.Context(), 1, 0)
			if err != nil {
				return err
			}

			out := importOutput{BatchID: batchID, Imported: len(parsed.Records), Skipped: len(parsed.Skipped), Total: total}
			if opts.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			t := newTable(cmd.OutOrStdout(), table.Row{"Пакет", "Загружено", "Пропущено", "Всего в базе"})
			t.AppendRow(table.Row{out.BatchID, out.Imported, out.Skipped, out.Total})
			t.Render()
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "файл базы (по умолчанию DATABASE_PATH)")
	return cmd
}
