// Package scheduler 提供定时任务
package scheduler

import (
	"context"
	"time"

	"github.com/focomkt/sales-hub-backend/internal/common/metrics"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
	membersvc "github.com/focomkt/sales-hub-backend/internal/service/member"
)

// TaskHandler 任务处理器
type TaskHandler struct {
	memberRepo   *repository.MemberRepository
	squadService *membersvc.SquadService
}

// NewTaskHandler 创建任务处理器
func NewTaskHandler(memberRepo *repository.MemberRepository, squadSvc *membersvc.SquadService) *TaskHandler {
	return &TaskHandler{
		memberRepo:   memberRepo,
		squadService: squadSvc,
	}
}

// RefreshLeaderboards 刷新排行榜缓存
func (h *TaskHandler) RefreshLeaderboards(ctx context.Context) error {
	return h.squadService.RefreshLeaderboards(ctx)
}

// RefreshPendingGauge 刷新待审核会员数指标
func (h *TaskHandler) RefreshPendingGauge(ctx context.Context) error {
	count, err := h.memberRepo.CountByStatus(ctx, models.MemberStatusPending)
	if err != nil {
		return err
	}
	metrics.GetMetrics().SetPendingMembers(float64(count))
	return nil
}

// SetupTasks 设置所有任务
func SetupTasks(scheduler *Scheduler, handler *TaskHandler, leaderboardInterval time.Duration) {
	if leaderboardInterval <= 0 {
		leaderboardInterval = 5 * time.Minute
	}

	// 定期重建排行榜缓存
	scheduler.AddTask("RefreshLeaderboards", leaderboardInterval, handler.RefreshLeaderboards)

	// 定期校准待审核会员指标
	scheduler.AddTask("RefreshPendingGauge", 1*time.Minute, handler.RefreshPendingGauge)
}
