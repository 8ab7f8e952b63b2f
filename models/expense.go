package models

import (
	"time"
)

// Expense 费用记录模型
// 删除为物理删除（与类别不同，费用记录删除后不保留）
type Expense struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Description string    `json:"description" gorm:"size:255;not null"`
	Amount      float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	CategoryID  uint      `json:"category_id" gorm:"index;not null"`
	Vendor      string    `json:"vendor" gorm:"size:100"`
	ExpenseDate time.Time `json:"date" gorm:"column:expense_date;not null;index"`
	ReceiptPath string    `json:"receipt_path" gorm:"size:255"`
	Notes       string    `json:"notes" gorm:"size:500"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Category    Category  `json:"-" gorm:"foreignKey:CategoryID"`
}

// TableName 设置表名
func (Expense) TableName() string {
	return "expenses"
}

// ExpenseWithCategory 带类别信息的费用记录（列表/详情返回）
type ExpenseWithCategory struct {
	Expense
	Category *Category `json:"category"`
}
