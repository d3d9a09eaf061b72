package model

import (
	"time"

	"gorm.io/datatypes"
)

type Checklist struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;type:varchar(200);not null"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`
	CategoryID  *uint64   `gorm:"column:category_id;index"`
	Version     int       `gorm:"column:version;not null;default:1"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;autoUpdateTime;index"`
}

func (Checklist) TableName() string {
	return "checklists"
}

// ChecklistItem rows are unique per (checklist_id, check_item_id).
type ChecklistItem struct {
	ID          uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	ChecklistID uint64         `gorm:"column:checklist_id;not null;uniqueIndex:ux_checklist_items_pair,priority:1"`
	CheckItemID uint64         `gorm:"column:check_item_id;not null;uniqueIndex:ux_checklist_items_pair,priority:2;index"`
	Order       int            `gorm:"column:order;not null;default:0"`
	Required    bool           `gorm:"column:required;not null;default:false"`
	Instruction string         `gorm:"column:instruction;type:text;not null;default:''"`
	Unit        string         `gorm:"column:unit;type:varchar(50);not null;default:''"`
	Options     datatypes.JSON `gorm:"column:options;type:json"`
	CreatedAt   time.Time      `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt   time.Time      `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (ChecklistItem) TableName() string {
	return "checklist_items"
}
