package security

import (
	"context"
	"errors"
	"time"

	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/database"
	apperrors "github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/utils"
	"github.com/golang-jwt/jwt/v5"
)

const revokedKeyPrefix = "revoked:"

// Claims JWT声明，携带主体身份与角色
type Claims struct {
	UserID    int64    `json:"userId"`
	Username  string   `json:"username"`
	DeptID    int64    `json:"deptId"`
	RoleCodes []string `json:"roleCodes"`
	jwt.RegisteredClaims
}

// TokenManager 令牌管理器。
// 负责签发、校验与吊销；吊销记录写入Redis，
// TTL等于令牌剩余生命周期，令牌自然过期后记录随之消亡。
type TokenManager struct {
	secret   []byte
	issuer   string
	expireIn time.Duration
	cache    *database.Cache
}

// NewTokenManager 创建令牌管理器
func NewTokenManager(cfg *config.JWTConfig, cache *database.Cache) *TokenManager {
	return &TokenManager{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		expireIn: time.Duration(cfg.Expire) * time.Second,
		cache:    cache,
	}
}

// Issue 签发令牌
func (m *TokenManager) Issue(userID int64, username string, deptID int64, roleCodes []string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:    userID,
		Username:  username,
		DeptID:    deptID,
		RoleCodes: roleCodes,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        utils.UUIDWithoutDash(),
			Issuer:    m.issuer,
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expireIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse 校验令牌并重建主体上下文。
// 依次检查签名与有效期、吊销记录；
// 语法与时间均有效但已被吊销的令牌同样拒绝。
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Principal, error) {
	claims, err := m.parseClaims(tokenString)
	if err != nil {
		return nil, err
	}

	revoked, err := m.cache.Exists(ctx, revokedKeyPrefix+claims.ID)
	if err != nil {
		// 吊销表不可读时放行语法有效的令牌，令牌本身仍受有效期约束
		revoked = false
	}
	if revoked {
		return nil, apperrors.ErrTokenRevoked
	}

	return &Principal{
		UserID:    claims.UserID,
		Username:  claims.Username,
		DeptID:    claims.DeptID,
		RoleCodes: claims.RoleCodes,
	}, nil
}

// Invalidate 吊销令牌。
// 同步写入吊销记录后才返回，调用方（登出、改密）得到成功答复时吊销已生效；
// 已过期的令牌无需吊销。
func (m *TokenManager) Invalidate(ctx context.Context, tokenString string) error {
	claims, err := m.parseClaims(tokenString)
	if err != nil {
		if errors.Is(err, apperrors.ErrTokenExpired) {
			return nil
		}
		return err
	}

	remaining := time.Until(claims.ExpiresAt.Time)
	if remaining <= 0 {
		return nil
	}

	return m.cache.Set(ctx, revokedKeyPrefix+claims.ID, 1, remaining)
}

// ExpireIn 获取令牌有效期
func (m *TokenManager) ExpireIn() time.Duration {
	return m.expireIn
}

// parseClaims 解析并校验签名与有效期
func (m *TokenManager) parseClaims(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	})

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, apperrors.ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenMalformed):
			return nil, apperrors.ErrTokenMalformed
		default:
			return nil, apperrors.ErrTokenInvalid
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, apperrors.ErrTokenInvalid
	}
	return claims, nil
}

// TokenInfo 令牌签发结果
type TokenInfo struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// CreateTokenInfo 签发令牌并包装返回结构
func (m *TokenManager) CreateTokenInfo(userID int64, username string, deptID int64, roleCodes []string) (*TokenInfo, error) {
	token, err := m.Issue(userID, username, deptID, roleCodes)
	if err != nil {
		return nil, err
	}

	return &TokenInfo{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(m.expireIn.Seconds()),
	}, nil
}
