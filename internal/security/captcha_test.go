package security

import (
	"context"
	"testing"
	"time"

	"github.com/goadmin/pkg/config"
	"github.com/goadmin/pkg/errors"
)

func newTestCaptcha(t *testing.T) (*CaptchaService, func(d time.Duration)) {
	t.Helper()

	cache, mr := newTestCache(t, "captcha")
	svc := NewCaptchaService(&config.CaptchaConfig{Enabled: true, Length: 4, Expire: 120}, cache)
	return svc, mr.FastForward
}

func TestCaptchaGenerateAndVerify(t *testing.T) {
	svc, _ := newTestCaptcha(t)
	ctx := context.Background()

	id, code, err := svc.Generate(ctx)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if id == "" || len(code) != 4 {
		t.Fatalf("id=%q code=%q", id, code)
	}

	if err := svc.Verify(ctx, id, code); err != nil {
		t.Errorf("verify: %v", err)
	}
}

func TestCaptchaIsSingleUse(t *testing.T) {
	svc, _ := newTestCaptcha(t)
	ctx := context.Background()

	id, code, err := svc.Generate(ctx)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := svc.Verify(ctx, id, code); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if err := svc.Verify(ctx, id, code); !errors.Is(err, errors.ErrCaptchaInvalid) {
		t.Errorf("second verify = %v, want ErrCaptchaInvalid", err)
	}
}

func TestCaptchaWrongCodeConsumesChallenge(t *testing.T) {
	svc, _ := newTestCaptcha(t)
	ctx := context.Background()

	id, code, err := svc.Generate(ctx)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if err := svc.Verify(ctx, id, "0000"+code); !errors.Is(err, errors.ErrCaptchaInvalid) {
		t.Errorf("wrong code verify = %v, want ErrCaptchaInvalid", err)
	}
	// 猜错也消耗验证码，正确值不能再兑现
	if err := svc.Verify(ctx, id, code); !errors.Is(err, errors.ErrCaptchaInvalid) {
		t.Errorf("verify after failed attempt = %v, want ErrCaptchaInvalid", err)
	}
}

func TestCaptchaExpires(t *testing.T) {
	svc, forward := newTestCaptcha(t)
	ctx := context.Background()

	id, code, err := svc.Generate(ctx)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	forward(121 * time.Second)

	if err := svc.Verify(ctx, id, code); !errors.Is(err, errors.ErrCaptchaInvalid) {
		t.Errorf("expired captcha verify = %v, want ErrCaptchaInvalid", err)
	}
}

func TestCaptchaRejectsEmptyInput(t *testing.T) {
	svc, _ := newTestCaptcha(t)

	if err := svc.Verify(context.Background(), "", ""); !errors.Is(err, errors.ErrCaptchaInvalid) {
		t.Errorf("empty input verify = %v, want ErrCaptchaInvalid", err)
	}
}
