package testutil

import (
	"fmt"
	"testing"

	"care_training_backend/internal/model"

	"gorm.io/gorm"
)

func CreateUser(t testing.TB, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{
		Name:     name,
		Email:    fmt.Sprintf("%s@example.com", name),
		Password: "x",
		Role:     role,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

// CreateModule 建一个已发布的模块，questions 道单选题，每题 points 分，正确答案为 B
func CreateModule(t testing.TB, db *gorm.DB, position, questions, points int) *model.TrainingModule {
	t.Helper()
	m := &model.TrainingModule{
		Title:       fmt.Sprintf("Module %d", position),
		Position:    position,
		VideoURL:    fmt.Sprintf("https://video.example.com/%d.mp4", position),
		Transcript:  "transcript",
		IsPublished: true,
	}
	if err := db.Create(m).Error; err != nil {
		t.Fatalf("create module: %v", err)
	}

	for i := 0; i < questions; i++ {
		q := &model.Question{
			ModuleID: m.ID,
			Text:     fmt.Sprintf("Q%d", i+1),
			Type:     model.MultipleChoice,
			Points:   points,
			Position: i + 1,
			Options: []model.QuestionOption{
				{Letter: "A", Text: "wrong"},
				{Letter: "B", Text: "right", IsCorrect: true},
				{Letter: "C", Text: "wrong"},
			},
		}
		if err := db.Create(q).Error; err != nil {
			t.Fatalf("create question: %v", err)
		}
	}
	return m
}
