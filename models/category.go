package models

import (
	"time"
)

// Category 费用类别（软删除：置 is_active=false，历史费用仍可引用）
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:50;not null;uniqueIndex"`
	Color       string    `json:"color" gorm:"size:20;default:#3b82f6"` // 颜色代码，如 #ef4444
	Description string    `json:"description" gorm:"size:255"`
	IsActive    bool      `json:"is_active" gorm:"default:true;index"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 设置表名
func (Category) TableName() string {
	return "categories"
}

// DefaultCategoryColor 未指定颜色时的默认值
const DefaultCategoryColor = "#3b82f6"
