package auth

import "github.com/goadmin/internal/security"

// LoginRequest 登录请求
type LoginRequest struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	CaptchaID   string `json:"captchaId"`
	CaptchaCode string `json:"captchaCode"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Token    *security.TokenInfo `json:"token"`
	UserInfo *UserInfo           `json:"userInfo"`
}

// UserInfo 登录用户信息
type UserInfo struct {
	ID        int64    `json:"id"`
	Username  string   `json:"username"`
	Nickname  string   `json:"nickname"`
	Email     string   `json:"email"`
	Phone     string   `json:"phone"`
	DeptID    int64    `json:"deptId"`
	RoleCodes []string `json:"roleCodes"`
}

// CaptchaResponse 验证码响应
type CaptchaResponse struct {
	CaptchaID   string `json:"captchaId"`
	CaptchaCode string `json:"captchaCode"`
}

// MeResponse 当前主体信息
type MeResponse struct {
	UserInfo    *UserInfo `json:"userInfo"`
	Permissions []string  `json:"permissions"`
	DataScope   int8      `json:"dataScope"`
}
