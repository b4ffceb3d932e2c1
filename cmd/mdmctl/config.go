package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"mdmserver/internal/config"
)

func configCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Проверить конфигурацию из переменных окружения",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return err
			}

			categories := cfg.CategoryConfigPath
			if categories == "" {
				categories = "[встроенный]"
			}

			t := newTable(cmd.OutOrStdout(), table.Row{"Параметр", "Значение"})
			t.AppendRows([]table.Row{
				{"Порт", cfg.Port},
				{"База справочника", cfg.DatabasePath},
				{"Справочник категорий", categories},
				{"Max Open Connections", cfg.MaxOpenConns},
				{"Max Idle Connections", cfg.MaxIdleConns},
				{"Connection Max Lifetime", cfg.ConnMaxLifetime},
				{"Уровень логирования", cfg.LogLevel},
			})
			t.AppendSeparator()
			t.AppendRows([]table.Row{
				{"Порог поиска", cfg.MatchDefaultThreshold},
				{"Максимум результатов", cfg.MatchMaxResults},
				{"Вес правил в поиске", cfg.MatchRuleWeight},
				{"Мин. уверенность классификации", cfg.ClassifyMinConfidence},
				{"Сдвиг весов по насыщенности", cfg.ClassifyRichnessShift},
				{"Наследование ключевых слов", cfg.ClassifyInheritKeywords},
				{"Воркеров пакетной обработки", cfg.BatchWorkers},
				{"Лимит запросов", fmt.Sprintf("%.0f rps, burst %d", cfg.RateLimitRPS, cfg.RateLimitBurst)},
			})
			t.Render()
			cmd.Println("Конфигурация корректна")
			return nil
		},
	}
}
