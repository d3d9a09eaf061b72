package model

import (
	"time"

	"gorm.io/datatypes"
)

type ProcessSheet struct {
	ID           uint64          `gorm:"column:id;primaryKey;autoIncrement"`
	Name         string          `gorm:"column:name;type:varchar(200);not null"`
	ProjectName  string          `gorm:"column:project_name;type:varchar(200);not null;default:''"`
	LotNumber    string          `gorm:"column:lot_number;type:varchar(255);not null;default:''"`
	Inspector    string          `gorm:"column:inspector;type:varchar(255);not null;default:''"`
	Status       string          `gorm:"column:status;type:varchar(20);not null;default:'planning';index"`
	Priority     int             `gorm:"column:priority;not null;default:3"`
	Assignee     string          `gorm:"column:assignee;type:varchar(100);not null;default:''"`
	PlannedStart *datatypes.Date `gorm:"column:planned_start"`
	PlannedEnd   *datatypes.Date `gorm:"column:planned_end"`
	ChecklistID  *uint64         `gorm:"column:checklist_id;index"`
	Notes        string          `gorm:"column:notes;type:text;not null;default:''"`
	Progress     int             `gorm:"column:progress;not null;default:0"`
	CreatedAt    time.Time       `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;not null;autoUpdateTime;index"`
}

func (ProcessSheet) TableName() string {
	return "process_sheets"
}
