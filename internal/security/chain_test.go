package security

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goadmin/internal/perm"
	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/errors"
	"github.com/goadmin/pkg/filter"
	"github.com/goadmin/pkg/response"
	"github.com/gofiber/fiber/v2"
)

// stubAuthorizer 固定返回的授权决策器
type stubAuthorizer struct {
	perms []string
	scope perm.DataScope
}

func (s *stubAuthorizer) PermissionsFor(ctx context.Context, roleCodes []string) ([]string, error) {
	return s.perms, nil
}

func (s *stubAuthorizer) ResolveScope(ctx context.Context, roleCodes []string) perm.DataScope {
	return s.scope
}

func (s *stubAuthorizer) ScopeExpr(ctx context.Context, scope perm.DataScope, deptID, userID int64, cols perm.Columns) filter.Expression {
	return nil
}

type chainFixture struct {
	app     *fiber.App
	tokens  *TokenManager
	captcha *CaptchaService
}

func newTestChain(t *testing.T, secCfg *config.SecurityConfig) *chainFixture {
	t.Helper()

	cache, _ := newTestCache(t, "")
	tokens := NewTokenManager(&config.JWTConfig{Secret: "s", Issuer: "i", Expire: 3600}, cache)
	captcha := NewCaptchaService(&secCfg.Captcha, cache)
	limiter := NewRateLimiter(&secCfg.RateLimit, cache)
	chain := NewChain(secCfg, tokens, captcha, limiter, &stubAuthorizer{scope: perm.ScopeSelf})

	app := fiber.New()
	chain.Register(app)

	app.Post("/login", func(c *fiber.Ctx) error {
		return response.Success(c, nil)
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		principal := GetPrincipal(c)
		if principal == nil {
			return response.ServerError(c, "principal missing")
		}
		return response.Success(c, principal.Username)
	})

	return &chainFixture{app: app, tokens: tokens, captcha: captcha}
}

func defaultSecurityConfig() *config.SecurityConfig {
	return &config.SecurityConfig{
		RateLimit: config.RateLimitConfig{Enabled: true, Max: 100, Window: 60},
		Captcha:   config.CaptchaConfig{Enabled: true, Length: 4, Expire: 120, Paths: []string{"/login"}},
		SkipPaths: []string{"/login"},
	}
}

func TestChainSkipPathPassesWithoutToken(t *testing.T) {
	cfg := defaultSecurityConfig()
	cfg.Captcha.Enabled = false
	f := newTestChain(t, cfg)

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestChainRejectsMissingToken(t *testing.T) {
	f := newTestChain(t, defaultSecurityConfig())

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestChainAcceptsBearerToken(t *testing.T) {
	f := newTestChain(t, defaultSecurityConfig())

	token, err := f.tokens.Issue(1, "admin", 0, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestChainDistinguishesMalformedAuthorizationHeader(t *testing.T) {
	f := newTestChain(t, defaultSecurityConfig())

	cases := []struct {
		name   string
		header string
	}{
		{"非Bearer凭证", "Basic dXNlcjpwYXNz"},
		{"只有方案没有令牌", "Bearer "},
		{"缺少方案", "some-raw-token"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
		req.Header.Set(fiber.HeaderAuthorization, tc.header)

		resp, err := f.app.Test(req)
		if err != nil {
			t.Fatalf("%s request: %v", tc.name, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s status = %d, want 401", tc.name, resp.StatusCode)
		}

		var body response.Response
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("%s decode body: %v", tc.name, err)
		}
		if body.Message != errors.ErrTokenMalformed.Message {
			t.Errorf("%s message = %q, want %q", tc.name, body.Message, errors.ErrTokenMalformed.Message)
		}
	}

	// 完全未携带令牌仍然是"未提供"
	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	var body response.Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Message != errors.ErrTokenMissing.Message {
		t.Errorf("message = %q, want %q", body.Message, errors.ErrTokenMissing.Message)
	}
}

func TestChainRejectsRevokedToken(t *testing.T) {
	f := newTestChain(t, defaultSecurityConfig())
	ctx := context.Background()

	token, err := f.tokens.Issue(1, "admin", 0, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := f.tokens.Invalidate(ctx, token); err != nil {
		t.Fatalf("invalidate: %v", err)
	}

	req := httptest.NewRequest(fiber.MethodGet, "/me", nil)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)

	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", resp.StatusCode)
	}
}

func TestChainCaptchaGuard(t *testing.T) {
	f := newTestChain(t, defaultSecurityConfig())
	ctx := context.Background()

	// 无验证码
	req := httptest.NewRequest(fiber.MethodPost, "/login", nil)
	resp, err := f.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status without captcha = %d, want 400", resp.StatusCode)
	}

	// 携带有效验证码
	id, code, err := f.captcha.Generate(ctx)
	if err != nil {
		t.Fatalf("generate captcha: %v", err)
	}
	body, _ := json.Marshal(map[string]string{"captchaId": id, "captchaCode": code})
	req = httptest.NewRequest(fiber.MethodPost, "/login", bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err = f.app.Test(req)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status with captcha = %d, want 200", resp.StatusCode)
	}
}

func TestChainRateLimit(t *testing.T) {
	cfg := defaultSecurityConfig()
	cfg.RateLimit.Max = 2
	cfg.Captcha.Enabled = false
	f := newTestChain(t, cfg)

	for i := 1; i <= 2; i++ {
		resp, err := f.app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
		if err != nil {
			t.Fatalf("request %d: %v", i, err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("request %d status = %d, want 200", i, resp.StatusCode)
		}
	}

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
}

func TestChainRateLimitShortCircuitsBeforeAuth(t *testing.T) {
	cfg := defaultSecurityConfig()
	cfg.RateLimit.Max = 1
	f := newTestChain(t, cfg)

	if resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil)); err != nil {
		t.Fatalf("request: %v", err)
	} else if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("first status = %d, want 401", resp.StatusCode)
	}

	// 配额用尽后限流先于认证生效：无令牌也应得到 429 而不是 401
	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/me", nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", resp.StatusCode)
	}
}

func TestChainTokenFromQueryParam(t *testing.T) {
	f := newTestChain(t, defaultSecurityConfig())

	token, err := f.tokens.Issue(1, "admin", 0, nil)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	resp, err := f.app.Test(httptest.NewRequest(fiber.MethodGet, "/me?token="+token, nil))
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}
