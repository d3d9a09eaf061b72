package model

import (
	"time"

	"gorm.io/datatypes"
)

type Task struct {
	ID            uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	Title         string          `gorm:"column:title;type:varchar(200);not null"`
	Description   string          `gorm:"column:description;type:text;not null;default:''"`
	Assignee      string          `gorm:"column:assignee;type:varchar(100);not null;default:''"`
	DueDate       *datatypes.Date `gorm:"column:due_date"`
	Status        string          `gorm:"column:status;type:varchar(10);not null;default:'todo';index"`
	Priority      string          `gorm:"column:priority;type:varchar(10);not null;default:'medium'"`
	ChecklistName string          `gorm:"column:checklist_name;type:varchar(200);not null;default:''"`
	CreatedAt     time.Time       `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;not null;autoUpdateTime;index"`
}

func (Task) TableName() string {
	return "tasks"
}
