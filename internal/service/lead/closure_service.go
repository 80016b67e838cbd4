// Package lead 销售线索服务
package lead

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/focomkt/sales-hub-backend/internal/common/logger"
	"github.com/focomkt/sales-hub-backend/internal/common/metrics"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
)

// ClosureResult 结单级联的分步结果
// 线索本身的状态更新先于级联提交，这里只反映后续步骤的完成情况
type ClosureResult struct {
	Triggered          bool    `json:"triggered"`
	SaleValue          float64 `json:"sale_value"`
	MemberUpdated      bool    `json:"member_updated"`
	CommissionsCreated int     `json:"commissions_created"`
}

// ClosureService 结单级联服务
// 线索首次进入 closed 状态时累加归属会员的销售额并生成佣金记录。
// 各步骤互不回滚：失败只记日志，已提交的步骤保持不变
type ClosureService struct {
	memberRepo     *repository.MemberRepository
	commissionRepo *repository.CommissionRepository
	directRate     float64
	uplineRate     float64
}

// NewClosureService 创建结单级联服务
func NewClosureService(memberRepo *repository.MemberRepository, commissionRepo *repository.CommissionRepository) *ClosureService {
	return &ClosureService{
		memberRepo:     memberRepo,
		commissionRepo: commissionRepo,
		directRate:     models.CommissionRateDirect,
		uplineRate:     models.CommissionRateUpline,
	}
}

// SetRates 设置佣金比例
func (s *ClosureService) SetRates(directRate, uplineRate float64) {
	s.directRate = directRate
	s.uplineRate = uplineRate
}

// Close 执行一次结单级联
// 归属会员不存在时级联终止（线索保持 closed）；销售额为 0 同样生成佣金记录
func (s *ClosureService) Close(ctx context.Context, lead *models.Lead, saleValue float64) *ClosureResult {
	result := &ClosureResult{
		Triggered: true,
		SaleValue: saleValue,
	}

	metrics.GetMetrics().RecordLeadClosed(saleValue)

	member, err := s.memberRepo.GetByID(ctx, lead.MemberID)
	if err != nil {
		logger.Warn("结单级联终止：线索归属会员不存在",
			zap.Int64("lead_id", lead.ID),
			zap.Int64("member_id", lead.MemberID),
			zap.Error(err))
		return result
	}

	// 累加销售额，失败不阻断佣金生成
	if err := s.memberRepo.IncrementTotalSales(ctx, member.ID, saleValue); err != nil {
		logger.Error("结单级联：累加会员销售额失败",
			zap.Int64("lead_id", lead.ID),
			zap.Int64("member_id", member.ID),
			zap.Float64("sale_value", saleValue),
			zap.Error(err))
	} else {
		result.MemberUpdated = true
	}

	now := time.Now()
	commissions := []*models.Commission{
		s.buildCommission(member.ID, lead.ID, saleValue, s.directRate, now),
	}
	if member.UplineID != nil {
		commissions = append(commissions, s.buildCommission(*member.UplineID, lead.ID, saleValue, s.uplineRate, now))
	}

	if err := s.commissionRepo.CreateBatch(ctx, commissions); err != nil {
		logger.Error("结单级联：写入佣金记录失败",
			zap.Int64("lead_id", lead.ID),
			zap.Int64("member_id", member.ID),
			zap.Error(err))
		return result
	}

	result.CommissionsCreated = len(commissions)
	metrics.GetMetrics().RecordCommissionCreated("direct")
	if member.UplineID != nil {
		metrics.GetMetrics().RecordCommissionCreated("upline")
	}

	logger.Info("线索结单",
		zap.Int64("lead_id", lead.ID),
		zap.Int64("member_id", member.ID),
		zap.Float64("sale_value", saleValue),
		zap.Int("commissions_created", result.CommissionsCreated))

	return result
}

// buildCommission 构建一条佣金记录，佣金金额创建时一次性算定
func (s *ClosureService) buildCommission(memberID, leadID int64, saleValue, rate float64, saleDate time.Time) *models.Commission {
	return &models.Commission{
		MemberID:             memberID,
		LeadID:               leadID,
		SaleValue:            saleValue,
		CommissionPercentage: rate,
		CommissionValue:      saleValue * rate,
		SaleDate:             saleDate,
		Month:                int(saleDate.Month()),
		Year:                 saleDate.Year(),
		IsPaid:               false,
	}
}
