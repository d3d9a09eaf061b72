package model

import (
	"time"

	"gorm.io/datatypes"
)

type Category struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Name        string    `gorm:"column:name;type:varchar(100);not null;uniqueIndex"`
	Description string    `gorm:"column:description;type:text;not null;default:''"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}

type CheckItem struct {
	ID             uint64         `gorm:"column:id;primaryKey;autoIncrement"`
	Name           string         `gorm:"column:name;type:varchar(200);not null"`
	Type           string         `gorm:"column:type;type:varchar(20);not null;default:'text';index"`
	CategoryID     *uint64        `gorm:"column:category_id;index"`
	Required       bool           `gorm:"column:required;not null;default:false"`
	Unit           string         `gorm:"column:unit;type:varchar(50);not null;default:''"`
	Description    string         `gorm:"column:description;type:text;not null;default:''"`
	Options        datatypes.JSON `gorm:"column:options;type:json"`
	MinValue       *float64       `gorm:"column:min_value"`
	MaxValue       *float64       `gorm:"column:max_value"`
	DefaultValue   *float64       `gorm:"column:default_value"`
	DecimalPlaces  *int           `gorm:"column:decimal_places"`
	ReferenceImage string         `gorm:"column:reference_image;type:text;not null;default:''"`
	CreatedAt      time.Time      `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"column:updated_at;not null;autoUpdateTime;index"`
}

func (CheckItem) TableName() string {
	return "check_items"
}
