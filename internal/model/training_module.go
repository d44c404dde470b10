package model

type QuestionType string

const (
	MultipleChoice QuestionType = "multiple_choice"
	ShortAnswer    QuestionType = "short_answer"
)

// TrainingModule 一个培训单元：视频 + 文字稿 + 测评
// swagger:model TrainingModule
type TrainingModule struct {
	BaseModel
	Title                string `gorm:"size:255;not null" json:"title"`
	Description          string `gorm:"type:text" json:"description"`
	Position             int    `gorm:"uniqueIndex;not null" json:"position"`
	VideoURL             string `gorm:"size:512" json:"videoUrl"`
	VideoDurationSeconds int    `gorm:"default:0" json:"videoDurationSeconds"`
	ThumbnailURL         string `gorm:"size:512" json:"thumbnailUrl"`
	Transcript           string `gorm:"type:text" json:"transcript,omitempty"`
	IsPublished          bool   `gorm:"default:false" json:"isPublished"`
}

func (TrainingModule) TableName() string {
	return "training_modules"
}

// swagger:model Question
type Question struct {
	BaseModel
	ModuleID        uint             `gorm:"index;type:bigint unsigned;not null" json:"moduleId"`
	Text            string           `gorm:"type:text;not null" json:"text"`
	Type            QuestionType     `gorm:"size:30;not null" json:"type"`
	Points          int              `gorm:"not null;default:1" json:"points"`
	Position        int              `gorm:"default:0" json:"position"`
	ReferenceAnswer string           `gorm:"type:text" json:"referenceAnswer,omitempty"`
	Options         []QuestionOption `gorm:"foreignKey:QuestionID" json:"options"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOption 返回正确选项，单选题有且仅有一个
func (q *Question) CorrectOption() (QuestionOption, bool) {
	for _, o := range q.Options {
		if o.IsCorrect {
			return o, true
		}
	}
	return QuestionOption{}, false
}

type QuestionOption struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint   `gorm:"index;type:bigint unsigned;not null" json:"questionId"`
	Letter     string `gorm:"size:4;not null" json:"letter"`
	Text       string `gorm:"type:text;not null" json:"text"`
	IsCorrect  bool   `gorm:"default:false" json:"isCorrect"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
