package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/service"
	"care_training_backend/internal/util"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

var (
	success = color.New(color.FgGreen)
	skipped = color.New(color.FgYellow)
	failed  = color.New(color.FgRed)
)

type catalogFile struct {
	Modules []catalogModule `yaml:"modules"`
}

type catalogModule struct {
	Title       string            `yaml:"title"`
	Description string            `yaml:"description"`
	Position    int               `yaml:"position"`
	VideoURL    string            `yaml:"video_url"`
	Transcript  string            `yaml:"transcript"`
	Published   bool              `yaml:"published"`
	Questions   []catalogQuestion `yaml:"questions"`
}

type catalogQuestion struct {
	Text            string          `yaml:"text"`
	Type            string          `yaml:"type"`
	Points          int             `yaml:"points"`
	ReferenceAnswer string          `yaml:"reference_answer"`
	Options         []catalogOption `yaml:"options"`
}

type catalogOption struct {
	Letter  string `yaml:"letter"`
	Text    string `yaml:"text"`
	Correct bool   `yaml:"correct"`
}

type seedSummary struct {
	Created   int
	Skipped   int
	Questions int
}

func loadCatalog(r io.Reader) (*catalogFile, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if len(file.Modules) == 0 {
		return nil, fmt.Errorf("catalog has no modules")
	}
	return &file, nil
}

// seedCatalog 按 position 判重，已存在的模块整体跳过
func seedCatalog(ctx context.Context, catalog *service.CatalogService, file *catalogFile, out io.Writer) (*seedSummary, error) {
	summary := &seedSummary{}
	for _, m := range file.Modules {
		module, err := catalog.CreateModule(ctx, service.CreateModuleRequest{
			Title:       m.Title,
			Description: m.Description,
			Position:    m.Position,
			VideoURL:    m.VideoURL,
			Transcript:  m.Transcript,
			IsPublished: m.Published,
		})
		if util.IsConflict(err) {
			skipped.Fprintf(out, "skip   #%d %s (position already used)\n", m.Position, m.Title)
			summary.Skipped++
			continue
		}
		if err != nil {
			failed.Fprintf(out, "failed #%d %s\n", m.Position, m.Title)
			return summary, fmt.Errorf("module %d: %w", m.Position, err)
		}

		for i, q := range m.Questions {
			req := service.AddQuestionRequest{
				Text:            q.Text,
				Type:            model.QuestionType(q.Type),
				Points:          q.Points,
				Position:        i + 1,
				ReferenceAnswer: q.ReferenceAnswer,
			}
			if req.Type == "" {
				req.Type = model.MultipleChoice
			}
			for _, o := range q.Options {
				req.Options = append(req.Options, service.OptionRequest{Letter: o.Letter, Text: o.Text, IsCorrect: o.Correct})
			}
			if _, err := catalog.AddQuestion(module.ID, req); err != nil {
				failed.Fprintf(out, "failed #%d question %d\n", m.Position, i+1)
				return summary, fmt.Errorf("module %d question %d: %w", m.Position, i+1, err)
			}
			summary.Questions++
		}
		success.Fprintf(out, "create #%d %s (%d questions)\n", m.Position, m.Title, len(m.Questions))
		summary.Created++
	}
	return summary, nil
}

func newCatalogService(db *gorm.DB) *service.CatalogService {
	moduleRepo := repository.NewModuleRepository(db)
	progress := service.NewProgressService(db, repository.NewProgressRepository(db), moduleRepo, service.NewPolicyHolder(service.UnlockSequential))
	return service.NewCatalogService(moduleRepo, repository.NewQuestionRepository(db), progress, nil, nil, 0, os.TempDir())
}

func newSeedCommand() *cobra.Command {
	var file string

	command := &cobra.Command{
		Use:   "seed",
		Short: "Import training modules and questions from a YAML catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("os.Open(%s) > %w", file, err)
			}
			defer f.Close()

			catalogFile, err := loadCatalog(f)
			if err != nil {
				return err
			}

			_, db, err := openDB()
			if err != nil {
				return err
			}
			// 服务端的缓存会在 TTL 后过期
			summary, err := seedCatalog(cmd.Context(), newCatalogService(db), catalogFile, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d created, %d skipped, %d questions\n", summary.Created, summary.Skipped, summary.Questions)
			return nil
		},
	}
	command.Flags().StringVar(&file, "file", "catalog.yaml", "catalog file")
	return command
}

func newCreateAdminCommand() *cobra.Command {
	var name, email, password string

	command := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB()
			if err != nil {
				return err
			}
			auth := service.NewAuthService(repository.NewUserRepository(db), cfg)
			user, err := auth.CreateAdmin(name, email, password)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			success.Fprintf(cmd.OutOrStdout(), "Admin %s created (id %d)\n", user.Email, user.ID)
			return nil
		},
	}
	command.Flags().StringVar(&name, "name", "Administrator", "display name")
	command.Flags().StringVar(&email, "email", "", "login email")
	command.Flags().StringVar(&password, "password", "", "login password")
	_ = command.MarkFlagRequired("email")
	_ = command.MarkFlagRequired("password")
	return command
}
