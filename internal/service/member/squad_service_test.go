package member

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/focomkt/sales-hub-backend/internal/common/cache"
	apperrors "github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/models"
	"github.com/focomkt/sales-hub-backend/internal/repository"
)

// setupSquadTest 创建测试数据库与团队服务，默认不启用缓存
func setupSquadTest(t *testing.T) (*gorm.DB, *SquadService) {
	db, _, _ := setupMemberTest(t)
	cache.SetClient(nil)
	return db, NewSquadService(repository.NewMemberRepository(db))
}

// setupSquadCache 为测试挂载 miniredis
func setupSquadCache(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(client)
	t.Cleanup(func() {
		cache.SetClient(nil)
		client.Close()
	})
	return mr
}

// seedSquad 写入一个根会员及若干直属成员
func seedSquad(db *gorm.DB, prefix string, associates int, commission float64) *models.Member {
	root := &models.Member{
		AuthID:          prefix + "-root",
		FirstName:       prefix,
		TotalSales:      100,
		TotalContacts:   10,
		TotalCommission: commission,
		Status:          models.MemberStatusApproved,
	}
	db.Create(root)
	for i := 0; i < associates; i++ {
		db.Create(&models.Member{
			AuthID:          prefix + "-a" + string(rune('0'+i)),
			UplineID:        &root.ID,
			TotalSales:      50,
			TotalContacts:   5,
			TotalCommission: commission / 2,
			Status:          models.MemberStatusApproved,
		})
	}
	return root
}

func TestSquadService_GetSquad(t *testing.T) {
	db, svc := setupSquadTest(t)
	ctx := context.Background()

	root := seedSquad(db, "alpha", 3, 10)

	squad, err := svc.GetSquad(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, root.ID, squad.Leader.ID)
	assert.Len(t, squad.Associates, 3)

	_, err = svc.GetSquad(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrMemberNotFound)
}

func TestSquadService_GetSquadMetrics(t *testing.T) {
	db, svc := setupSquadTest(t)
	ctx := context.Background()

	root := seedSquad(db, "alpha", 2, 10)

	squadMetrics, err := svc.GetSquadMetrics(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), squadMetrics.MemberCount)
	assert.InDelta(t, 200, squadMetrics.TotalSales, 0.001)     // 100 + 2*50
	assert.InDelta(t, 20, squadMetrics.TotalContacts, 0.001)   // 10 + 2*5
	assert.InDelta(t, 20, squadMetrics.TotalCommission, 0.001) // 10 + 2*5
}

func TestSquadService_GetTopMembers(t *testing.T) {
	db, svc := setupSquadTest(t)
	ctx := context.Background()

	db.Create(&models.Member{AuthID: "m1", TotalCommission: 30, Status: models.MemberStatusApproved})
	db.Create(&models.Member{AuthID: "m2", TotalCommission: 90, Status: models.MemberStatusApproved})
	db.Create(&models.Member{AuthID: "m3", TotalCommission: 60, Status: models.MemberStatusApproved})

	top, err := svc.GetTopMembers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "m2", top[0].AuthID)
	assert.Equal(t, "m3", top[1].AuthID)
}

func TestSquadService_GetTopSquads(t *testing.T) {
	db, svc := setupSquadTest(t)
	ctx := context.Background()

	low := seedSquad(db, "low", 1, 10)   // 团队佣金 10 + 5 = 15
	high := seedSquad(db, "high", 2, 40) // 团队佣金 40 + 2*20 = 80

	squads, err := svc.GetTopSquads(ctx, 10)
	require.NoError(t, err)
	require.Len(t, squads, 2)

	assert.Equal(t, high.ID, squads[0].RootID)
	assert.InDelta(t, 80, squads[0].TotalCommission, 0.001)
	assert.Equal(t, int64(3), squads[0].SquadSize)
	require.NotNil(t, squads[0].Leader)
	assert.Equal(t, "high", squads[0].Leader.FirstName)

	assert.Equal(t, low.ID, squads[1].RootID)
	assert.InDelta(t, 15, squads[1].TotalCommission, 0.001)

	t.Run("截断到指定条数", func(t *testing.T) {
		squads, err := svc.GetTopSquads(ctx, 1)
		require.NoError(t, err)
		require.Len(t, squads, 1)
		assert.Equal(t, high.ID, squads[0].RootID)
	})
}

func TestSquadService_LeaderboardCache(t *testing.T) {
	db, svc := setupSquadTest(t)
	mr := setupSquadCache(t)
	ctx := context.Background()

	db.Create(&models.Member{AuthID: "m1", TotalCommission: 30, Status: models.MemberStatusApproved})

	first, err := svc.GetTopMembers(ctx, 5)
	require.NoError(t, err)
	require.Len(t, first, 1)

	// 缓存命中后数据库变更不反映到榜单
	db.Create(&models.Member{AuthID: "m2", TotalCommission: 90, Status: models.MemberStatusApproved})
	cached, err := svc.GetTopMembers(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, cached, 1)

	// 缓存过期后回源
	mr.FastForward(DefaultLeaderboardTTL + time.Second)
	fresh, err := svc.GetTopMembers(ctx, 5)
	require.NoError(t, err)
	assert.Len(t, fresh, 2)
}

func TestSquadService_RefreshLeaderboards(t *testing.T) {
	db, svc := setupSquadTest(t)
	setupSquadCache(t)
	ctx := context.Background()

	db.Create(&models.Member{AuthID: "m1", TotalCommission: 30, Status: models.MemberStatusApproved})

	_, err := svc.GetTopMembers(ctx, DefaultLeaderboardLimit)
	require.NoError(t, err)

	db.Create(&models.Member{AuthID: "m2", TotalCommission: 90, Status: models.MemberStatusApproved})

	// 刷新后缓存为最新数据
	require.NoError(t, svc.RefreshLeaderboards(ctx))
	top, err := svc.GetTopMembers(ctx, DefaultLeaderboardLimit)
	require.NoError(t, err)
	assert.Len(t, top, 2)
	assert.Equal(t, "m2", top[0].AuthID)
}
