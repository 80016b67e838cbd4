// Package commission 佣金服务
package commission

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
)

// CommissionService 佣金服务
type CommissionService struct {
	commissionRepo *repository.CommissionRepository
}

// NewCommissionService 创建佣金服务
func NewCommissionService(commissionRepo *repository.CommissionRepository) *CommissionService {
	return &CommissionService{commissionRepo: commissionRepo}
}

// CreateRequest 创建佣金请求
type CreateRequest struct {
	MemberID             int64      `json:"member_id" binding:"required"`
	LeadID               int64      `json:"lead_id" binding:"required"`
	SaleValue            float64    `json:"sale_value"`
	CommissionPercentage float64    `json:"commission_percentage" binding:"required"`
	CommissionValue      *float64   `json:"commission_value"`
	SaleDate             *time.Time `json:"sale_date"`
	PaymentDate          *time.Time `json:"payment_date"`
	IsPaid               bool       `json:"is_paid"`
}

// Create 手工创建一条佣金记录
// Month/Year 由 SaleDate 派生，保证按期批量结算能命中
func (s *CommissionService) Create(ctx context.Context, req *CreateRequest) (*models.Commission, error) {
	saleDate := time.Now()
	if req.SaleDate != nil {
		saleDate = *req.SaleDate
	}

	value := req.SaleValue * req.CommissionPercentage
	if req.CommissionValue != nil {
		value = *req.CommissionValue
	}

	commission := &models.Commission{
		MemberID:             req.MemberID,
		LeadID:               req.LeadID,
		SaleValue:            req.SaleValue,
		CommissionPercentage: req.CommissionPercentage,
		CommissionValue:      value,
		SaleDate:             saleDate,
		Month:                int(saleDate.Month()),
		Year:                 saleDate.Year(),
		PaymentDate:          req.PaymentDate,
		IsPaid:               req.IsPaid,
	}

	if err := s.commissionRepo.Create(ctx, commission); err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return commission, nil
}

// GetByID 获取单条佣金记录
func (s *CommissionService) GetByID(ctx context.Context, id int64) (*models.Commission, error) {
	commission, err := s.commissionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCommissionNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return commission, nil
}

// List 获取佣金列表
func (s *CommissionService) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Commission, int64, error) {
	commissions, total, err := s.commissionRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, apperrors.ErrDatabaseError.WithError(err)
	}
	return commissions, total, nil
}

// ListByMemberID 获取某会员的全部佣金记录
func (s *CommissionService) ListByMemberID(ctx context.Context, memberID int64) ([]*models.Commission, error) {
	commissions, err := s.commissionRepo.ListByMemberID(ctx, memberID)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return commissions, nil
}

// UpdateRequest 更新单条佣金请求
type UpdateRequest struct {
	SaleValue            *float64   `json:"sale_value"`
	CommissionPercentage *float64   `json:"commission_percentage"`
	CommissionValue      *float64   `json:"commission_value"`
	SaleDate             *time.Time `json:"sale_date"`
	PaymentDate          *time.Time `json:"payment_date"`
	IsPaid               *bool      `json:"is_paid"`
}

// UpdateByID 按 ID 更新单条佣金记录
func (s *CommissionService) UpdateByID(ctx context.Context, id int64, req *UpdateRequest) (*models.Commission, error) {
	fields := map[string]interface{}{}
	if req.SaleValue != nil {
		fields["sale_value"] = *req.SaleValue
	}
	if req.CommissionPercentage != nil {
		fields["commission_percentage"] = *req.CommissionPercentage
	}
	if req.CommissionValue != nil {
		fields["commission_value"] = *req.CommissionValue
	}
	if req.SaleDate != nil {
		fields["sale_date"] = *req.SaleDate
		fields["month"] = int(req.SaleDate.Month())
		fields["year"] = req.SaleDate.Year()
	}
	if req.PaymentDate != nil {
		fields["payment_date"] = *req.PaymentDate
	}
	if req.IsPaid != nil {
		fields["is_paid"] = *req.IsPaid
	}

	if len(fields) == 0 {
		return s.GetByID(ctx, id)
	}

	if err := s.commissionRepo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrCommissionNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return s.GetByID(ctx, id)
}

// UpdateForPeriod 按会员 + 月份批量更新匹配的佣金记录
// 载荷里给出的字段全部应用；带 is_paid 而未显式给出支付日期时，
// 支付日期随支付状态联动（已支付记当前时间，未支付清空）。
// 返回更新后的全部匹配记录；没有任何匹配视为错误
func (s *CommissionService) UpdateForPeriod(ctx context.Context, memberID int64, month, year int, req *UpdateRequest) ([]*models.Commission, error) {
	fields := map[string]interface{}{}
	if req.SaleValue != nil {
		fields["sale_value"] = *req.SaleValue
	}
	if req.CommissionPercentage != nil {
		fields["commission_percentage"] = *req.CommissionPercentage
	}
	if req.CommissionValue != nil {
		fields["commission_value"] = *req.CommissionValue
	}
	if req.SaleDate != nil {
		fields["sale_date"] = *req.SaleDate
	}
	if req.IsPaid != nil {
		fields["is_paid"] = *req.IsPaid
		fields["payment_date"] = paymentDate(*req.IsPaid)
	}
	if req.PaymentDate != nil {
		fields["payment_date"] = *req.PaymentDate
	}

	if len(fields) > 0 {
		affected, err := s.commissionRepo.UpdateForMemberPeriod(ctx, memberID, month, year, fields)
		if err != nil {
			return nil, apperrors.ErrDatabaseError.WithError(err)
		}
		if affected == 0 {
			return nil, apperrors.ErrNoCommissionsMatch
		}
	}

	commissions, err := s.commissionRepo.ListForMemberPeriod(ctx, memberID, month, year)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	if len(commissions) == 0 {
		return nil, apperrors.ErrNoCommissionsMatch
	}
	return commissions, nil
}

// MarkPaidForMember 批量标记某会员全部历史佣金的支付状态
// 会员没有任何佣金记录时不算错误，返回空列表
func (s *CommissionService) MarkPaidForMember(ctx context.Context, memberID int64, isPaid bool) ([]*models.Commission, error) {
	fields := map[string]interface{}{
		"is_paid":      isPaid,
		"payment_date": paymentDate(isPaid),
	}

	if _, err := s.commissionRepo.UpdateAllForMember(ctx, memberID, fields); err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	commissions, err := s.commissionRepo.ListByMemberID(ctx, memberID)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return commissions, nil
}

// GetMonthly 按月汇总某会员的佣金
func (s *CommissionService) GetMonthly(ctx context.Context, memberID int64) ([]*models.MonthlyCommission, error) {
	rollup, err := s.commissionRepo.GetMonthly(ctx, memberID)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return rollup, nil
}

// Delete 删除佣金记录
func (s *CommissionService) Delete(ctx context.Context, id int64) error {
	if err := s.commissionRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrCommissionNotFound
		}
		return apperrors.ErrDatabaseError.WithError(err)
	}
	return nil
}

// paymentDate 支付状态对应的支付日期：已支付记当前时间，未支付清空
func paymentDate(isPaid bool) interface{} {
	if isPaid {
		return time.Now()
	}
	return gorm.Expr("NULL")
}
