package model

import "time"

// Certificate 每个学员最多一张
// swagger:model Certificate
type Certificate struct {
	BaseModel
	TraineeID        uint      `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"traineeId"`
	SerialNumber     string    `gorm:"size:36;uniqueIndex;not null" json:"serialNumber"`
	TraineeName      string    `gorm:"size:100" json:"traineeName"`
	CompletedModules int       `json:"completedModules"`
	AverageScore     float64   `json:"averageScore"`
	DocumentURL      string    `gorm:"size:512" json:"documentUrl"`
	IssuedAt         time.Time `json:"issuedAt"`
}

func (Certificate) TableName() string {
	return "certificates"
}
