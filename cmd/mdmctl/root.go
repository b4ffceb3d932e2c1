package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mdmserver/classification"
	"mdmserver/engine"
	"mdmserver/importer"
	"mdmserver/internal/config"
	"mdmserver/internal/domain/material"
)

// options общие флаги всех команд
type options struct {
	categoriesPath string
	output         string
	verbose        bool
}

func newRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "mdmctl",
		Short:         "Классификация и дедупликация справочника МТР",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch opts.output {
			case outputTable, outputJSON:
				return nil
			}
			return fmt.Errorf("unknown output format %q (table, json)", opts.output)
		},
	}

	root.PersistentFlags().StringVar(&opts.categoriesPath, "categories", "", "справочник категорий YAML (по умолчанию CATEGORY_CONFIG_PATH или встроенный)")
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", outputTable, "формат вывода: table или json")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "отладочный лог в stderr")

	root.AddCommand(
		classifyCommand(opts),
		explainCommand(opts),
		matchCommand(opts),
		thresholdsCommand(opts),
		dedupCommand(opts),
		importCommand(opts),
		categoriesCommand(opts),
		configCommand(),
		generateCommand(),
	)
	return root
}

func (o *options) logger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if o.verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// loadEngine собирает движок по переменным окружения и справочнику категорий
func (o *options) loadEngine(cmd *cobra.Command) (*engine.Engine, *config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}

	path := o.categoriesPath
	if path == "" {
		path = cfg.CategoryConfigPath
	}
	var categories *classification.CategoryConfig
	if path == "" {
		categories, err = classification.DefaultCategoryConfig()
	} else {
		categories, err = classification.LoadCategoryConfig(path)
	}
	if err != nil {
		return nil, nil, err
	}

	eng, err := engine.New(categories.Categories, cfg.EngineConfig(), engine.WithLogger(o.logger(cmd.ErrOrStderr())))
	if err != nil {
		return nil, nil, err
	}
	return eng, cfg, nil
}

// readMaterials читает справочник из xlsx или csv
func readMaterials(path string) (*importer.MaterialsImport, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return importer.ParseMaterialsExcelFile(path)
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return importer.ParseMaterialsCSV(f)
	}
	return nil, fmt.Errorf("unsupported file %s: expected .xlsx or .csv", path)
}

// readCorpus читает справочник и предупреждает о пропущенных строках
func readCorpus(cmd *cobra.Command, path string) ([]material.Record, error) {
	parsed, err := readMaterials(path)
	if err != nil {
		return nil, err
	}
	for _, issue := range parsed.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "строка %d пропущена: %s\n", issue.Row, issue.Reason)
	}
	return parsed.Records, nil
}
