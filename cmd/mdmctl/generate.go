package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mdmserver/importer"
	"mdmserver/internal/synth"
)

func generateCommand() *cobra.Command {
	var (
		count   int
		dupRate float64
		seed    int64
		output  string
	)

	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Сгенерировать синтетический справочник с дубликатами",
		Example: `  mdmctl generate --count 10000 --dup-rate 0.2 --out data/materials_10k.xlsx`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return errors.New("--count must be positive")
			}
			if dupRate < 0 || dupRate >= 1 {
				return errors.New("--dup-rate must be in [0, 1)")
			}
			if output == "" {
				return errors.New("--out is required")
			}

			records := synth.Materials(count, synth.Options{Seed: seed, DuplicateRate: dupRate})

			if dir := filepath.Dir(output); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			switch ext := strings.ToLower(filepath.Ext(output)); ext {
			case ".xlsx":
				err = importer.WriteMaterialsExcel(f, records)
			case ".csv":
				err = importer.WriteMaterialsCSV(f, records)
			case ".json":
				err = writeJSON(f, records)
			default:
				err = fmt.Errorf("unsupported output extension %q", ext)
			}
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "записано %d записей в %s\n", len(records), output)
			return nil
		},
	}

	cmd.Flags().IntVar(&count, "count", 1000, "количество записей")
	cmd.Flags().Float64Var(&dupRate, "dup-rate", 0.2, "доля искаженных копий")
	cmd.Flags().Int64Var(&seed, "seed", 42, "зерно генератора")
	cmd.Flags().StringVar(&output, "out", "", "файл .xlsx, .csv или .json")
	return cmd
}
