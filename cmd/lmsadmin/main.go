// lmsadmin 培训平台运维命令：迁移、导入课程、导出进度
package main

import (
	"context"
	"fmt"
	"os"

	"care_training_backend/internal/config"
	"care_training_backend/pkg/database"
	"care_training_backend/pkg/logger"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var configDir string

func main() {
	if err := newRootCommand().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "failed to execute a command: %+v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "lmsadmin",
		Short:         "Care training administration commands",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configDir, "config", "configs", "directory containing config.yaml")

	root.AddCommand(
		newMigrateCommand(),
		newSeedCommand(),
		newCreateAdminCommand(),
		newExportProgressCommand(),
	)
	return root
}

// openDB 读取配置并连接数据库，命令行工具不自动迁移
func openDB() (*config.Config, *gorm.DB, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.InitLogger(cfg)

	db, err := database.Open(&cfg.Database, cfg.Server.Mode)
	if err != nil {
		return nil, nil, fmt.Errorf("database.Open() > %w", err)
	}
	return cfg, db, nil
}

func newMigrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update tables and seed the intake questionnaire",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			if err := database.Migrate(db); err != nil {
				return fmt.Errorf("database.Migrate() > %w", err)
			}
			success.Fprintln(cmd.OutOrStdout(), "Migration completed")
			return nil
		},
	}
}
