package service

import (
	"care_training_backend/internal/model"
	"care_training_backend/internal/repository"
	"care_training_backend/internal/util"
	"care_training_backend/pkg/cache"
	"care_training_backend/pkg/database"
	"care_training_backend/pkg/logger"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const publishedModulesKey = "modules:published"

type CreateModuleRequest struct {
	Title       string `json:"title" validate:"required,notblank,max=255"`
	Description string `json:"description"`
	Position    int    `json:"position" validate:"required,gte=1"`
	VideoURL    string `json:"videoUrl" validate:"omitempty,url"`
	Transcript  string `json:"transcript"`
	IsPublished bool   `json:"isPublished"`
}

// UpdateModuleRequest 只更新传入的字段
type UpdateModuleRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=255"`
	Description *string `json:"description"`
	Position    *int    `json:"position" validate:"omitempty,gte=1"`
	VideoURL    *string `json:"videoUrl" validate:"omitempty,url"`
	Transcript  *string `json:"transcript"`
	IsPublished *bool   `json:"isPublished"`
}

type OptionRequest struct {
	Letter    string `json:"letter" validate:"required,notblank,max=4"`
	Text      string `json:"text" validate:"required,notblank"`
	IsCorrect bool   `json:"isCorrect"`
}

type AddQuestionRequest struct {
	Text            string             `json:"text" validate:"required,notblank"`
	Type            model.QuestionType `json:"type" validate:"required,oneof=multiple_choice short_answer"`
	Points          int                `json:"points" validate:"required,gte=1"`
	Position        int                `json:"position" validate:"gte=0"`
	ReferenceAnswer string             `json:"referenceAnswer"`
	Options         []OptionRequest    `json:"options" validate:"dive"`
}

// ModuleOverview 学员看到的模块列表项
type ModuleOverview struct {
	model.TrainingModule
	State    ModuleStateName       `json:"state"`
	Unlocked bool                  `json:"unlocked"`
	Progress *model.ModuleProgress `json:"progress"`
}

type CatalogService struct {
	ModuleRepo   *repository.ModuleRepository
	QuestionRepo *repository.QuestionRepository
	Progress     *ProgressService
	Storage      StorageProvider
	Cache        cache.Cache
	CacheTTL     time.Duration
	TempDir      string

	Probe     func(videoPath string) (*util.VideoInfo, error)
	Thumbnail func(videoPath, thumbnailPath string, offsetSeconds int) error
}

func NewCatalogService(
	moduleRepo *repository.ModuleRepository,
	questionRepo *repository.QuestionRepository,
	progress *ProgressService,
	storage StorageProvider,
	c cache.Cache,
	cacheTTL time.Duration,
	tempDir string,
) *CatalogService {
	if c == nil {
		c = cache.NopCache{}
	}
	return &CatalogService{
		ModuleRepo:   moduleRepo,
		QuestionRepo: questionRepo,
		Progress:     progress,
		Storage:      storage,
		Cache:        c,
		CacheTTL:     cacheTTL,
		TempDir:      tempDir,
		Probe:        util.ProbeVideo,
		Thumbnail:    util.GenerateThumbnail,
	}
}

// Published 优先读缓存，缓存出错时回退到数据库
func (s *CatalogService) Published(ctx context.Context) ([]model.TrainingModule, error) {
	var modules []model.TrainingModule
	hit, err := s.Cache.Get(ctx, publishedModulesKey, &modules)
	if err != nil {
		logger.Log.Warn("Catalog cache read failed", zap.Error(err))
	}
	if hit {
		return modules, nil
	}

	modules, err = s.ModuleRepo.ListPublished()
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, publishedModulesKey, modules, s.CacheTTL); err != nil {
		logger.Log.Warn("Catalog cache write failed", zap.Error(err))
	}
	return modules, nil
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.Cache.Delete(ctx, publishedModulesKey); err != nil {
		logger.Log.Warn("Catalog cache invalidation failed", zap.Error(err))
	}
}

// Overview 模块列表 + 当前学员的解锁状态和进度
func (s *CatalogService) Overview(ctx context.Context, traineeID uint) ([]ModuleOverview, error) {
	modules, err := s.Published(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Progress.ListByTrainee(traineeID)
	if err != nil {
		return nil, err
	}

	byModule := make(map[uint]*model.ModuleProgress, len(rows))
	for i := range rows {
		byModule[rows[i].ModuleID] = &rows[i]
	}

	states := DeriveModuleStates(modules, rows, s.Progress.Policy.Get())
	out := make([]ModuleOverview, len(modules))
	for i, m := range modules {
		p := byModule[m.ID]
		if p == nil {
			p = model.NewModuleProgress(traineeID, m.ID)
		}
		m.Transcript = ""
		if !states[i].Unlocked {
			m.VideoURL = ""
		}
		out[i] = ModuleOverview{TrainingModule: m, State: states[i].State, Unlocked: states[i].Unlocked, Progress: p}
	}
	return out, nil
}

// Detail 未解锁的模块不返回视频和文字稿
func (s *CatalogService) Detail(traineeID, moduleID uint) (*ModuleOverview, error) {
	modules, states, err := s.Progress.ModuleStates(traineeID)
	if err != nil {
		return nil, err
	}
	for i, m := range modules {
		if m.ID != moduleID {
			continue
		}
		p, err := s.Progress.GetOrInit(traineeID, moduleID)
		if err != nil {
			return nil, err
		}
		if !states[i].Unlocked {
			m.VideoURL = ""
			m.Transcript = ""
		}
		return &ModuleOverview{TrainingModule: m, State: states[i].State, Unlocked: states[i].Unlocked, Progress: p}, nil
	}
	return nil, util.NewNotFoundError("module", moduleID)
}

func (s *CatalogService) ListAll() ([]model.TrainingModule, error) {
	return s.ModuleRepo.ListAll()
}

func (s *CatalogService) CreateModule(ctx context.Context, req CreateModuleRequest) (*model.TrainingModule, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}

	m := &model.TrainingModule{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		Position:    req.Position,
		VideoURL:    req.VideoURL,
		Transcript:  req.Transcript,
		IsPublished: req.IsPublished,
	}
	if err := s.ModuleRepo.Create(m); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, util.NewConflictError(fmt.Sprintf("position %d already used", req.Position), false)
		}
		return nil, err
	}
	s.invalidate(ctx)
	logger.Log.Info("Training module created", zap.Uint("module_id", m.ID), zap.Int("position", m.Position))
	return m, nil
}

func (s *CatalogService) findModule(id uint) (*model.TrainingModule, error) {
	m, err := s.ModuleRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.NewNotFoundError("module", id)
	}
	return m, err
}

func (s *CatalogService) UpdateModule(ctx context.Context, id uint, req UpdateModuleRequest) (*model.TrainingModule, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	m, err := s.findModule(id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		m.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		m.Description = *req.Description
	}
	if req.Position != nil {
		m.Position = *req.Position
	}
	if req.VideoURL != nil {
		m.VideoURL = *req.VideoURL
	}
	if req.Transcript != nil {
		m.Transcript = *req.Transcript
	}
	if req.IsPublished != nil {
		m.IsPublished = *req.IsPublished
	}

	if err := s.ModuleRepo.Update(m); err != nil {
		if database.IsDuplicateKey(err) {
			return nil, util.NewConflictError(fmt.Sprintf("position %d already used", m.Position), false)
		}
		return nil, err
	}
	s.invalidate(ctx)
	return m, nil
}

// validateQuestion 单选题恰好一个正确选项且字母不重复；简答题不带选项
func validateQuestion(req AddQuestionRequest) error {
	var fields []util.FieldError
	switch req.Type {
	case model.MultipleChoice:
		if len(req.Options) < 2 {
			fields = append(fields, util.FieldError{Field: "options", Error: "multiple choice needs at least two options"})
		}
		correct := 0
		letters := make(map[string]bool, len(req.Options))
		for i, o := range req.Options {
			letter := strings.ToUpper(strings.TrimSpace(o.Letter))
			if letters[letter] {
				fields = append(fields, util.FieldError{Field: fmt.Sprintf("options[%d].letter", i), Error: "duplicate letter " + letter})
			}
			letters[letter] = true
			if o.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			fields = append(fields, util.FieldError{Field: "options", Error: "exactly one option must be correct"})
		}
	case model.ShortAnswer:
		if len(req.Options) > 0 {
			fields = append(fields, util.FieldError{Field: "options", Error: "short answer questions have no options"})
		}
	}
	if len(fields) > 0 {
		return util.NewValidationError("invalid question", fields...)
	}
	return nil
}

func (s *CatalogService) AddQuestion(moduleID uint, req AddQuestionRequest) (*model.Question, error) {
	if err := Validate(req); err != nil {
		return nil, err
	}
	if err := validateQuestion(req); err != nil {
		return nil, err
	}
	if _, err := s.findModule(moduleID); err != nil {
		return nil, err
	}

	q := &model.Question{
		ModuleID:        moduleID,
		Text:            strings.TrimSpace(req.Text),
		Type:            req.Type,
		Points:          req.Points,
		Position:        req.Position,
		ReferenceAnswer: req.ReferenceAnswer,
	}
	if q.Position == 0 {
		count, err := s.QuestionRepo.CountByModule(moduleID)
		if err != nil {
			return nil, err
		}
		q.Position = int(count) + 1
	}
	for _, o := range req.Options {
		q.Options = append(q.Options, model.QuestionOption{
			Letter:    strings.ToUpper(strings.TrimSpace(o.Letter)),
			Text:      o.Text,
			IsCorrect: o.IsCorrect,
		})
	}

	if err := s.QuestionRepo.Create(q); err != nil {
		return nil, err
	}
	return q, nil
}

// UploadVideo 校验文件、读取时长、生成封面，视频和封面都写入存储
func (s *CatalogService) UploadVideo(ctx context.Context, moduleID uint, file *multipart.FileHeader) (*model.TrainingModule, error) {
	if !util.HasAllowedExtension(file.Filename, util.AllowedVideoExtensions) {
		return nil, util.NewValidationError("invalid video file",
			util.FieldError{Field: "file", Error: "unsupported extension " + filepath.Ext(file.Filename)})
	}
	m, err := s.findModule(moduleID)
	if err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	mimeType, err := util.ValidateMimeType(src, []string{util.MimeVideo})
	if err != nil {
		return nil, util.NewValidationError("invalid video file", util.FieldError{Field: "file", Error: err.Error()})
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(s.TempDir, 0755); err != nil {
		return nil, err
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	tmp, err := os.CreateTemp(s.TempDir, "video-*"+ext)
	if err != nil {
		return nil, err
	}
	videoPath := tmp.Name()
	defer os.Remove(videoPath)

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, err
	}

	info, err := s.Probe(videoPath)
	if err != nil {
		logger.Log.Warn("Video probe failed", zap.Uint("module_id", moduleID), zap.Error(err))
		info = &util.VideoInfo{}
	}

	videoURL, err := s.Storage.UploadFile(ctx, ObjectKey("videos", ext), videoPath, mimeType)
	if err != nil {
		return nil, err
	}

	thumbnailPath := strings.TrimSuffix(videoPath, ext) + ".jpg"
	defer os.Remove(thumbnailPath)
	thumbnailURL := ""
	if err := s.Thumbnail(videoPath, thumbnailPath, thumbnailOffset(info.DurationSeconds)); err != nil {
		logger.Log.Warn("Thumbnail generation failed", zap.Uint("module_id", moduleID), zap.Error(err))
	} else if thumbnailURL, err = s.Storage.UploadFile(ctx, ObjectKey("thumbnails", ".jpg"), thumbnailPath, "image/jpeg"); err != nil {
		logger.Log.Warn("Thumbnail upload failed", zap.Uint("module_id", moduleID), zap.Error(err))
		thumbnailURL = ""
	}

	m.VideoURL = videoURL
	m.VideoDurationSeconds = info.DurationSeconds
	if thumbnailURL != "" {
		m.ThumbnailURL = thumbnailURL
	}
	if err := s.ModuleRepo.Update(m); err != nil {
		return nil, err
	}
	s.invalidate(ctx)

	logger.Log.Info("Module video uploaded",
		zap.Uint("module_id", moduleID),
		zap.Int("duration_seconds", info.DurationSeconds),
		zap.Int64("size", file.Size),
	)
	return m, nil
}

// thumbnailOffset 三秒以内的视频从开头截图
func thumbnailOffset(duration int) int {
	if duration > 0 && duration <= 3 {
		return 0
	}
	return 3
}
