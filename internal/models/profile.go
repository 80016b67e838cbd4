package models

import (
	"time"
)

// Profile 账号档案
// 身份凭证由外部身份服务托管，这里只保存其用户 ID 与角色信息；
// 角色为 member 的账号会同时拥有一条 Member 记录
type Profile struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthID    string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"auth_id"`
	Email     string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	Role      string    `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	FirstName string    `gorm:"type:varchar(50);not null;default:''" json:"first_name"`
	LastName  string    `gorm:"type:varchar(50);not null;default:''" json:"last_name"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 表名
func (Profile) TableName() string {
	return "profiles"
}

// 账号角色
const (
	RoleAdmin  = "admin"  // 管理员
	RoleMember = "member" // 会员
)
