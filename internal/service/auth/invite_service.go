package auth

import (
	"fmt"

	apperrors "github.com/focomkt/sales-hub-backend/internal/common/errors"
	"github.com/focomkt/sales-hub-backend/internal/common/qrcode"
)

// InviteService 邀请链接服务
// 为会员生成注册邀请链接及对应二维码
type InviteService struct {
	baseURL   string
	generator *qrcode.Generator
}

// NewInviteService 创建邀请链接服务
func NewInviteService(baseURL string) *InviteService {
	return &InviteService{
		baseURL:   baseURL,
		generator: qrcode.NewGenerator(),
	}
}

// InviteInfo 邀请信息
type InviteInfo struct {
	MemberID int64  `json:"member_id"`
	Link     string `json:"link"`
	QRCode   string `json:"qr_code"` // data URL
}

// GetInviteInfo 生成某会员的邀请链接与二维码
func (s *InviteService) GetInviteInfo(memberID int64) (*InviteInfo, error) {
	link := fmt.Sprintf("%s?upline=%d", s.baseURL, memberID)

	qr, err := s.generator.GenerateDataURL(link)
	if err != nil {
		return nil, apperrors.ErrInternalError.WithError(err)
	}

	return &InviteInfo{
		MemberID: memberID,
		Link:     link,
		QRCode:   qr,
	}, nil
}
