package models

import (
	"time"
)

// WalletEntry 钱包充值记录（类似预付费充值）
// 钱包余额 = 所有充值记录之和 - 所有费用之和，充值历史只追加不修改余额字段
type WalletEntry struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Amount      float64   `json:"amount" gorm:"type:decimal(10,2);not null"`
	Description string    `json:"description" gorm:"size:255"`
	EntryDate   time.Time `json:"date" gorm:"column:entry_date;not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 设置表名
func (WalletEntry) TableName() string {
	return "expense_wallets"
}
