// Package models 定义数据模型
package models

import (
	"time"
)

// Member 会员模型
// 推荐关系为单层结构：UplineID 指向直接上线，上线本身必须是根会员（无上线），
// 业务上不构成多级树，佣金计算也只追溯一层
type Member struct {
	ID              int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	AuthID          string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"auth_id"`
	FirstName       string    `gorm:"type:varchar(50);not null;default:''" json:"first_name"`
	LastName        string    `gorm:"type:varchar(50);not null;default:''" json:"last_name"`
	CPF             string    `gorm:"type:varchar(20);not null;default:''" json:"cpf"`
	Phone           string    `gorm:"type:varchar(20);not null;default:''" json:"phone"`
	Grade           string    `gorm:"type:varchar(20);not null;default:''" json:"grade"`
	ProfilePicture  string    `gorm:"type:varchar(255);not null;default:''" json:"profile_picture"`
	UplineID        *int64    `gorm:"index" json:"upline_id,omitempty"`
	TotalSales      float64   `gorm:"type:decimal(12,2);not null;default:0" json:"total_sales"`
	TotalContacts   float64   `gorm:"type:decimal(12,2);not null;default:0" json:"total_contacts"`
	TotalCommission float64   `gorm:"type:decimal(12,2);not null;default:0" json:"total_commission"`
	Status          string    `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	HasSeenTutorial bool      `gorm:"not null;default:false" json:"has_seen_tutorial"`
	CreatedAt       time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Upline     *Member  `gorm:"foreignKey:UplineID" json:"upline,omitempty"`
	Associates []Member `gorm:"foreignKey:UplineID" json:"associates,omitempty"`
}

// TableName 表名
func (Member) TableName() string {
	return "members"
}

// MemberStatus 会员审核状态
const (
	MemberStatusPending  = "pending"  // 待审核
	MemberStatusApproved = "approved" // 已通过
	MemberStatusRejected = "rejected" // 已拒绝
)

// MaxSquadSize 每个上线最多可发展的直接下级数量，根会员总数同样受此限制
const MaxSquadSize = 12

// IsRoot 是否为根会员（无上线）
func (m *Member) IsRoot() bool {
	return m.UplineID == nil
}

// FullName 全名
func (m *Member) FullName() string {
	if m.FirstName == "" {
		return m.LastName
	}
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}

// ValidMemberStatus 校验审核状态取值
func ValidMemberStatus(status string) bool {
	switch status {
	case MemberStatusPending, MemberStatusApproved, MemberStatusRejected:
		return true
	}
	return false
}
