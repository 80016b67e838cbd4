package lead

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/common/metrics"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
)

// LeadService 线索服务
type LeadService struct {
	leadRepo *repository.LeadRepository
	closure  *ClosureService
}

// NewLeadService 创建线索服务
func NewLeadService(leadRepo *repository.LeadRepository, closure *ClosureService) *LeadService {
	return &LeadService{
		leadRepo: leadRepo,
		closure:  closure,
	}
}

// CreateRequest 创建线索请求
type CreateRequest struct {
	Name      string  `json:"name" binding:"required"`
	Phone     string  `json:"phone"`
	Source    string  `json:"source"`
	Status    string  `json:"status"`
	MemberID  int64   `json:"member_id" binding:"required"`
	SaleValue float64 `json:"sale_value"`
}

// Create 创建线索
// 创建时即为 closed 不触发级联，级联只跟随状态变更
func (s *LeadService) Create(ctx context.Context, req *CreateRequest) (*models.Lead, error) {
	status := req.Status
	if status == "" {
		status = models.LeadStatusNew
	}
	if !models.ValidLeadStatus(status) {
		return nil, apperrors.ErrInvalidLeadStatus
	}

	lead := &models.Lead{
		Name:      req.Name,
		Phone:     req.Phone,
		Source:    req.Source,
		Status:    status,
		MemberID:  req.MemberID,
		SaleValue: req.SaleValue,
	}

	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	metrics.GetMetrics().RecordLeadCreated()
	return lead, nil
}

// GetByID 获取线索
func (s *LeadService) GetByID(ctx context.Context, id int64) (*models.Lead, error) {
	lead, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrLeadNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return lead, nil
}

// List 获取线索列表
func (s *LeadService) List(ctx context.Context, offset, limit int, filters map[string]interface{}) ([]*models.Lead, int64, error) {
	leads, total, err := s.leadRepo.List(ctx, offset, limit, filters)
	if err != nil {
		return nil, 0, apperrors.ErrDatabaseError.WithError(err)
	}
	return leads, total, nil
}

// ListByMemberID 获取某会员名下的全部线索
func (s *LeadService) ListByMemberID(ctx context.Context, memberID int64) ([]*models.Lead, error) {
	leads, err := s.leadRepo.ListByMemberID(ctx, memberID)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}
	return leads, nil
}

// UpdateRequest 更新线索请求，未提供的字段保持原值
type UpdateRequest struct {
	Name      *string  `json:"name"`
	Phone     *string  `json:"phone"`
	Source    *string  `json:"source"`
	Status    *string  `json:"status"`
	MemberID  *int64   `json:"member_id"`
	SaleValue *float64 `json:"sale_value"`
}

// Update 更新线索
// 状态首次从非 closed 变为 closed 时触发结单级联；字段更新先行提交，
// 级联各步骤的成败不影响线索本身。不带状态的更新永不触发级联
func (s *LeadService) Update(ctx context.Context, id int64, req *UpdateRequest) (*models.Lead, *ClosureResult, error) {
	prev, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrLeadNotFound
		}
		return nil, nil, apperrors.ErrDatabaseError.WithError(err)
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Phone != nil {
		fields["phone"] = *req.Phone
	}
	if req.Source != nil {
		fields["source"] = *req.Source
	}
	if req.Status != nil {
		if !models.ValidLeadStatus(*req.Status) {
			return nil, nil, apperrors.ErrInvalidLeadStatus
		}
		fields["status"] = *req.Status
	}
	if req.MemberID != nil {
		fields["member_id"] = *req.MemberID
	}
	if req.SaleValue != nil {
		fields["sale_value"] = *req.SaleValue
	}

	if len(fields) > 0 {
		if err := s.leadRepo.UpdateFields(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, nil, apperrors.ErrLeadNotFound
			}
			return nil, nil, apperrors.ErrDatabaseError.WithError(err)
		}
	}

	updated, err := s.leadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, apperrors.ErrDatabaseError.WithError(err)
	}

	// 结单是一次性事件：已经 closed 的线索再次提交 closed 不重复触发
	var result *ClosureResult
	if req.Status != nil && *req.Status == models.LeadStatusClosed && prev.Status != models.LeadStatusClosed {
		saleValue := prev.SaleValue
		if req.SaleValue != nil {
			saleValue = *req.SaleValue
		}
		// 佣金记入更新前的归属会员：同一请求里改归属时不把业绩算给新会员
		result = s.closure.Close(ctx, prev, saleValue)
	}

	return updated, result, nil
}

// Delete 删除线索（历史佣金记录保留）
func (s *LeadService) Delete(ctx context.Context, id int64) error {
	if err := s.leadRepo.Delete(ctx, id); err != nil {
		// 删除不存在的线索视为成功，数据库错误照常上抛
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return apperrors.ErrDatabaseError.WithError(err)
	}
	return nil
}
