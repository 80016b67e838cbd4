package models

import (
	"time"
)

// Lead 销售线索模型
type Lead struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;default:''" json:"name"`
	Phone     string    `gorm:"type:varchar(20);not null;default:''" json:"phone"`
	Source    string    `gorm:"type:varchar(50);not null;default:''" json:"source"`
	Status    string    `gorm:"type:varchar(20);not null;default:'new';index" json:"status"`
	MemberID  int64     `gorm:"index;not null" json:"member_id"`
	SaleValue float64   `gorm:"type:decimal(12,2);not null;default:0" json:"sale_value"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// 关联
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}

// TableName 表名
func (Lead) TableName() string {
	return "leads"
}

// LeadStatus 线索状态
// 状态推进不做强制顺序校验，但进入 closed 是一次性的结单事件
const (
	LeadStatusNew         = "new"         // 新线索
	LeadStatusContacted   = "contacted"   // 已联系
	LeadStatusInProgress  = "in-progress" // 跟进中
	LeadStatusNegotiating = "negotiating" // 谈判中
	LeadStatusClosed      = "closed"      // 已成交
	LeadStatusLost        = "lost"        // 已流失
)

// ValidLeadStatus 校验线索状态取值
func ValidLeadStatus(status string) bool {
	switch status {
	case LeadStatusNew, LeadStatusContacted, LeadStatusInProgress,
		LeadStatusNegotiating, LeadStatusClosed, LeadStatusLost:
		return true
	}
	return false
}
