package security

import (
	"context"
	"strings"
	"time"

	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/database"
	"github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/utils"
)

// CaptchaService 验证码服务。
// 发放一次性挑战值，校验即销毁（GETDEL），同一验证码不可重放。
type CaptchaService struct {
	cache  *database.Cache
	length int
	expire time.Duration
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg *config.CaptchaConfig, cache *database.Cache) *CaptchaService {
	length := cfg.Length
	if length <= 0 {
		length = 4
	}
	expire := time.Duration(cfg.Expire) * time.Second
	if expire <= 0 {
		expire = 2 * time.Minute
	}

	return &CaptchaService{
		cache:  cache,
		length: length,
		expire: expire,
	}
}

// Generate 生成验证码，返回验证码ID与明文
func (s *CaptchaService) Generate(ctx context.Context) (string, string, error) {
	id := utils.UUIDWithoutDash()
	code := utils.RandomNumber(s.length)

	if err := s.cache.Set(ctx, id, code, s.expire); err != nil {
		return "", "", err
	}
	return id, code, nil
}

// Verify 校验验证码。
// 取值即删除，无论校验成败验证码都只能使用一次。
func (s *CaptchaService) Verify(ctx context.Context, id, code string) error {
	if id == "" || code == "" {
		return errors.ErrCaptchaInvalid
	}

	stored, err := s.cache.GetDel(ctx, id)
	if err != nil {
		return errors.ErrCaptchaInvalid
	}

	if !strings.EqualFold(stored, code) {
		return errors.ErrCaptchaInvalid
	}
	return nil
}
