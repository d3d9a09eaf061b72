package model

import "time"

type User struct {
	ID          uint64    `gorm:"column:id;primaryKey;autoIncrement"`
	Username    string    `gorm:"column:username;type:varchar(150);not null;uniqueIndex"`
	Email       string    `gorm:"column:email;type:varchar(254);not null;default:''"`
	DisplayName string    `gorm:"column:display_name;type:varchar(100);not null;default:''"`
	Department  string    `gorm:"column:department;type:varchar(100);not null;default:''"`
	IsActive    bool      `gorm:"column:is_active;not null;default:true"`
	IsStaff     bool      `gorm:"column:is_staff;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;not null;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;not null;autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
