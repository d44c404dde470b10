package model

import "time"

// swagger:model LiveClass
type LiveClass struct {
	BaseModel
	ModuleID        *uint     `gorm:"index;type:bigint unsigned" json:"moduleId"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	HostName        string    `gorm:"size:100" json:"hostName"`
	StartsAt        time.Time `gorm:"index;not null" json:"startsAt"`
	DurationMinutes int       `gorm:"not null" json:"durationMinutes"`
	MeetingURL      string    `gorm:"size:512" json:"meetingUrl"`
	Capacity        int       `gorm:"default:0" json:"capacity"` // 0 表示不限
}

func (LiveClass) TableName() string {
	return "live_classes"
}

func (c *LiveClass) EndsAt() time.Time {
	return c.StartsAt.Add(time.Duration(c.DurationMinutes) * time.Minute)
}

type LiveClassRegistration struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	ClassID   uint      `gorm:"uniqueIndex:idx_class_trainee;type:bigint unsigned;not null" json:"classId"`
	TraineeID uint      `gorm:"uniqueIndex:idx_class_trainee;type:bigint unsigned;not null" json:"traineeId"`
}

func (LiveClassRegistration) TableName() string {
	return "live_class_registrations"
}
