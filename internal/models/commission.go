package models

import (
	"time"
)

// Commission 佣金记录
// 同一条线索结单最多产生两条记录：归属会员一条（直推），其上线一条（层级加成），
// 以佣金比例区分。CommissionValue 在创建时一次性算定，之后不再重算
type Commission struct {
	ID                   int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	MemberID             int64      `gorm:"index;not null" json:"member_id"`
	LeadID               int64      `gorm:"index;not null" json:"lead_id"`
	SaleValue            float64    `gorm:"type:decimal(12,2);not null" json:"sale_value"`
	CommissionPercentage float64    `gorm:"type:decimal(5,4);not null" json:"commission_percentage"`
	CommissionValue      float64    `gorm:"type:decimal(12,2);not null" json:"commission_value"`
	SaleDate             time.Time  `gorm:"not null" json:"sale_date"`
	Month                int        `gorm:"not null;index:idx_commissions_member_period" json:"month"`
	Year                 int        `gorm:"not null;index:idx_commissions_member_period" json:"year"`
	PaymentDate          *time.Time `json:"payment_date,omitempty"`
	IsPaid               bool       `gorm:"not null;default:false" json:"is_paid"`
	CreatedAt            time.Time  `gorm:"autoCreateTime" json:"created_at"`

	// 关联（线索删除后佣金记录独立保留，不做级联删除）
	Member *Member `gorm:"foreignKey:MemberID" json:"member,omitempty"`
	Lead   *Lead   `gorm:"foreignKey:LeadID" json:"lead,omitempty"`
}

// TableName 表名
func (Commission) TableName() string {
	return "commissions"
}

// 佣金比例层级
const (
	CommissionRateDirect = 0.03  // 直推比例 3%
	CommissionRateUpline = 0.015 // 上线加成比例 1.5%
)

// MonthlyCommission 按月汇总结果
type MonthlyCommission struct {
	Year            int     `json:"year"`
	Month           int     `json:"month"`
	TotalCommission float64 `json:"total_commission"`
}
