package model

import "time"

type Execution struct {
	ID             uint64     `gorm:"column:id;primaryKey;autoIncrement"`
	ProcessSheetID *uint64    `gorm:"column:process_sheet_id;index"`
	ChecklistID    uint64     `gorm:"column:checklist_id;not null;index"`
	ExecutorID     *uint64    `gorm:"column:executor_id;index"`
	Status         string     `gorm:"column:status;type:varchar(20);not null;default:'draft';index"`
	Result         string     `gorm:"column:result;type:varchar(10);not null;default:''"`
	StartedAt      *time.Time `gorm:"column:started_at"`
	FinishedAt     *time.Time `gorm:"column:finished_at"`
	Comment        string     `gorm:"column:comment;type:text;not null;default:''"`
	Version        int        `gorm:"column:version;not null;default:1"`
	CreatedAt      time.Time  `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt      time.Time  `gorm:"column:updated_at;not null;autoUpdateTime;index"`
}

func (Execution) TableName() string {
	return "executions"
}

type ExecutionItemResult struct {
	ID              uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ExecutionID     uint64    `gorm:"column:execution_id;not null;index"`
	ChecklistItemID uint64    `gorm:"column:checklist_item_id;not null;index"`
	Status          string    `gorm:"column:status;type:varchar(10);not null;default:'OK'"`
	Value           string    `gorm:"column:value;type:varchar(255);not null;default:''"`
	Note            string    `gorm:"column:note;type:text;not null;default:''"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt       time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (ExecutionItemResult) TableName() string {
	return "execution_item_results"
}

type ExecutionPhoto struct {
	ID           uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	ItemResultID uint64    `gorm:"column:item_result_id;not null;index"`
	Image        string    `gorm:"column:image;type:text;not null"`
	Annotation   string    `gorm:"column:annotation;type:text;not null;default:''"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (ExecutionPhoto) TableName() string {
	return "execution_photos"
}
