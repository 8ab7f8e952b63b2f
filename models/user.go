package models

import (
	"time"
)

const (
	// RoleAdmin 管理员：可管理用户、类别和钱包
	RoleAdmin = "admin"
	// RoleUser 普通用户：可记录和查看费用
	RoleUser = "user"
)

// User 用户模型
// 用户由管理员预先创建，SSO 登录不会自动建号；停用后保留历史数据但无法登录
type User struct {
	ID            uint       `json:"id" gorm:"primaryKey"`
	Email         string     `json:"email" gorm:"size:100;not null;uniqueIndex"`
	Name          string     `json:"name" gorm:"size:100;not null"`
	Role          string     `json:"role" gorm:"size:20;not null;default:user;index"` // admin/user
	EntraObjectID *string    `json:"entra_object_id,omitempty" gorm:"size:64;uniqueIndex"` // Entra ID object id，NULL 表示尚未通过 SSO 登录
	Password      string     `json:"-" gorm:"size:255"` // 仅初始管理员的本地登录密码（bcrypt），SSO 用户为空
	IsActive      bool       `json:"is_active" gorm:"default:true;index"`
	LastLoginAt   *time.Time `json:"last_login_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// TableName 设置表名
func (User) TableName() string {
	return "users"
}

// IsAdmin 是否为管理员
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
