package member

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/focomkt/sales-hub-backend/internal/common/cache"
	apperrors "github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/common/logger"
	"github.com/focomkt/sales-hub-backend/internal/common/metrics"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
)

// 排行榜默认值
const (
	DefaultLeaderboardLimit = 10
	DefaultLeaderboardTTL   = 60 * time.Second
)

// SquadService 团队服务
// 排行榜走 Redis 缓存，缓存不可用时直接回源数据库
type SquadService struct {
	memberRepo *repository.MemberRepository
	cacheTTL   time.Duration
	limit      int
}

// NewSquadService 创建团队服务
func NewSquadService(memberRepo *repository.MemberRepository) *SquadService {
	return &SquadService{
		memberRepo: memberRepo,
		cacheTTL:   DefaultLeaderboardTTL,
		limit:      DefaultLeaderboardLimit,
	}
}

// SetLeaderboard 设置排行榜缓存过期时间与默认条数
func (s *SquadService) SetLeaderboard(cacheTTL time.Duration, defaultLimit int) {
	if cacheTTL > 0 {
		s.cacheTTL = cacheTTL
	}
	if defaultLimit > 0 {
		s.limit = defaultLimit
	}
}

// Squad 团队：队长及其直属成员
type Squad struct {
	Leader     *models.Member   `json:"leader"`
	Associates []*models.Member `json:"associates"`
}

// GetSquad 获取某会员的团队（本人 + 一层直属成员）
func (s *SquadService) GetSquad(ctx context.Context, id int64) (*Squad, error) {
	leader, err := s.memberRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrMemberNotFound
		}
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	associates, err := s.memberRepo.ListAssociates(ctx, id)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	return &Squad{Leader: leader, Associates: associates}, nil
}

// SquadMetrics 团队汇总指标
type SquadMetrics struct {
	MemberCount     int64   `json:"member_count"`
	TotalSales      float64 `json:"total_sales"`
	TotalContacts   float64 `json:"total_contacts"`
	TotalCommission float64 `json:"total_commission"`
}

// GetSquadMetrics 获取团队汇总指标（队长本人计入）
func (s *SquadService) GetSquadMetrics(ctx context.Context, id int64) (*SquadMetrics, error) {
	squad, err := s.GetSquad(ctx, id)
	if err != nil {
		return nil, err
	}

	result := &SquadMetrics{
		MemberCount:     int64(len(squad.Associates)) + 1,
		TotalSales:      squad.Leader.TotalSales,
		TotalContacts:   squad.Leader.TotalContacts,
		TotalCommission: squad.Leader.TotalCommission,
	}
	for _, m := range squad.Associates {
		result.TotalSales += m.TotalSales
		result.TotalContacts += m.TotalContacts
		result.TotalCommission += m.TotalCommission
	}
	return result, nil
}

// GetTopMembers 按累计佣金排序的会员排行榜
func (s *SquadService) GetTopMembers(ctx context.Context, limit int) ([]*models.Member, error) {
	if limit <= 0 {
		limit = s.limit
	}

	key := cache.BuildKey(cache.KeyPrefixLeaderboard, "members", strconv.Itoa(limit))
	var cached []*models.Member
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	members, err := s.memberRepo.TopByCommission(ctx, limit)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	s.cacheSet(ctx, key, members)
	return members, nil
}

// TopSquad 团队排行榜条目
type TopSquad struct {
	RootID          int64          `json:"root_id"`
	Leader          *models.Member `json:"leader"`
	SquadSize       int64          `json:"squad_size"`
	TotalSales      float64        `json:"total_sales"`
	TotalCommission float64        `json:"total_commission"`
}

// GetTopSquads 按团队累计佣金排序的团队排行榜
// 逐个根会员展开直属成员并累加计数器（根会员总数受 12 上限约束，回查可控）
func (s *SquadService) GetTopSquads(ctx context.Context, limit int) ([]*TopSquad, error) {
	if limit <= 0 {
		limit = s.limit
	}

	key := cache.BuildKey(cache.KeyPrefixLeaderboard, "squads", strconv.Itoa(limit))
	var cached []*TopSquad
	if s.cacheGet(ctx, key, &cached) {
		return cached, nil
	}

	roots, err := s.memberRepo.ListRoots(ctx)
	if err != nil {
		return nil, apperrors.ErrDatabaseError.WithError(err)
	}

	squads := make([]*TopSquad, 0, len(roots))
	for _, root := range roots {
		associates, err := s.memberRepo.ListAssociates(ctx, root.ID)
		if err != nil {
			return nil, apperrors.ErrDatabaseError.WithError(err)
		}

		entry := &TopSquad{
			RootID:          root.ID,
			Leader:          root,
			SquadSize:       int64(len(associates)) + 1,
			TotalSales:      root.TotalSales,
			TotalCommission: root.TotalCommission,
		}
		for _, m := range associates {
			entry.TotalSales += m.TotalSales
			entry.TotalCommission += m.TotalCommission
		}
		squads = append(squads, entry)
	}

	sort.Slice(squads, func(i, j int) bool {
		return squads[i].TotalCommission > squads[j].TotalCommission
	})
	if len(squads) > limit {
		squads = squads[:limit]
	}

	s.cacheSet(ctx, key, squads)
	return squads, nil
}

// RefreshLeaderboards 重建排行榜缓存（定时任务调用）
func (s *SquadService) RefreshLeaderboards(ctx context.Context) error {
	if cache.GetClient() == nil {
		return nil
	}

	keys := []string{
		cache.BuildKey(cache.KeyPrefixLeaderboard, "members", strconv.Itoa(s.limit)),
		cache.BuildKey(cache.KeyPrefixLeaderboard, "squads", strconv.Itoa(s.limit)),
	}
	if err := cache.Delete(ctx, keys...); err != nil {
		return err
	}

	if _, err := s.GetTopMembers(ctx, s.limit); err != nil {
		return err
	}
	_, err := s.GetTopSquads(ctx, s.limit)
	return err
}

// cacheGet 读排行榜缓存，命中返回 true；缓存不可用或未命中时回源
func (s *SquadService) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if cache.GetClient() == nil {
		return false
	}
	if err := cache.Get(ctx, key, dest); err != nil {
		metrics.RecordCacheMissGlobal("leaderboard")
		return false
	}
	metrics.RecordCacheHitGlobal("leaderboard")
	return true
}

// cacheSet 写排行榜缓存，失败只记日志
func (s *SquadService) cacheSet(ctx context.Context, key string, value interface{}) {
	if cache.GetClient() == nil {
		return
	}
	if err := cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		logger.Warn("排行榜缓存写入失败", zap.String("key", key), zap.Error(err))
	}
}
