// Package utils 通用工具函数单元测试
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGenerateInviteCode(t *testing.T) {
	code := GenerateInviteCode(8)
	assert.Len(t, code, 8)

	// 不应包含易混淆字符
	for _, c := range code {
		assert.NotContains(t, "0OI1", string(c))
	}

	// 两次生成应该不同（理论上可能相同但概率极低）
	code2 := GenerateInviteCode(8)
	assert.NotEqual(t, code, code2)
}

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"user@example.com", true},
		{"maria.silva@focomkt.com.br", true},
		{"user+tag@sub.domain.org", true},
		{"invalid", false},
		{"@example.com", false},
		{"user@", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateEmail(tt.email))
		})
	}
}

func TestValidateCPF(t *testing.T) {
	tests := []struct {
		name  string
		cpf   string
		valid bool
	}{
		{"有效CPF", "529.982.247-25", true},
		{"有效CPF无格式", "52998224725", true},
		{"校验位错误", "52998224724", false},
		{"全部相同数字", "111.111.111-11", false},
		{"位数不足", "1234567890", false},
		{"空字符串", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, ValidateCPF(tt.cpf))
		})
	}
}

func TestPtrHelpers(t *testing.T) {
	s := StringPtr("hello")
	assert.Equal(t, "hello", *s)

	i := Int64Ptr(42)
	assert.Equal(t, int64(42), *i)

	f := Float64Ptr(3.14)
	assert.Equal(t, 3.14, *f)

	now := time.Now()
	tp := TimePtr(now)
	assert.Equal(t, now, *tp)
}

func TestSafeHelpers(t *testing.T) {
	assert.Equal(t, "", SafeString(nil))
	assert.Equal(t, "x", SafeString(StringPtr("x")))

	assert.Equal(t, int64(0), SafeInt64(nil))
	assert.Equal(t, int64(7), SafeInt64(Int64Ptr(7)))

	assert.Equal(t, float64(0), SafeFloat64(nil))
	assert.Equal(t, 1.5, SafeFloat64(Float64Ptr(1.5)))
}

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"a", "b", "c"}, "b"))
	assert.False(t, Contains([]string{"a", "b", "c"}, "d"))
	assert.True(t, Contains([]int64{1, 2, 3}, int64(3)))
	assert.False(t, Contains([]int64{}, int64(1)))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Unique([]string{"a", "b", "a", "c", "b"}))
	assert.Equal(t, []int{1, 2, 3}, Unique([]int{1, 1, 2, 3, 3}))
	assert.Empty(t, Unique([]int{}))
}

func TestPagination(t *testing.T) {
	t.Run("规范化默认值", func(t *testing.T) {
		p := Pagination{Page: 0, PageSize: 0}
		p.Normalize()
		assert.Equal(t, 1, p.Page)
		assert.Equal(t, 20, p.PageSize)
	})

	t.Run("规范化上限", func(t *testing.T) {
		p := Pagination{Page: 2, PageSize: 500}
		p.Normalize()
		assert.Equal(t, 100, p.PageSize)
	})

	t.Run("偏移量计算", func(t *testing.T) {
		p := Pagination{Page: 3, PageSize: 20}
		assert.Equal(t, 40, p.GetOffset())
		assert.Equal(t, 20, p.GetLimit())
	})
}
