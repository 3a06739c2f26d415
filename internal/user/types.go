package user

import "github.com/goadmin/pkg/dal"

// CreateRequest 创建用户请求
type CreateRequest struct {
	Username string  `json:"username"`
	Password string  `json:"password"`
	Nickname string  `json:"nickname"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	DeptID   int64   `json:"deptId"`
	RoleIDs  []int64 `json:"roleIds"`
	Status   int8    `json:"status"`
}

// UpdateRequest 更新用户请求
type UpdateRequest struct {
	Nickname string  `json:"nickname"`
	Email    string  `json:"email"`
	Phone    string  `json:"phone"`
	DeptID   int64   `json:"deptId"`
	RoleIDs  []int64 `json:"roleIds"`
	Status   int8    `json:"status"`
}

// ListRequest 用户列表请求
type ListRequest struct {
	dal.Pagination
	Username string `query:"username"`
	Nickname string `query:"nickname"`
	Phone    string `query:"phone"`
	DeptID   int64  `query:"deptId"`
	Status   *int8  `query:"status"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}
