package role

import "github.com/goadmin/pkg/dal"

// CreateRequest 创建角色请求
type CreateRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	DataScope   int8   `json:"dataScope"`
	Status      int8   `json:"status"`
	Sort        int    `json:"sort"`
	Description string `json:"description"`
}

// UpdateRequest 更新角色请求
type UpdateRequest struct {
	Name        string `json:"name"`
	Code        string `json:"code"`
	DataScope   int8   `json:"dataScope"`
	Status      *int8  `json:"status"`
	Sort        int    `json:"sort"`
	Description string `json:"description"`
}

// ListRequest 角色列表请求
type ListRequest struct {
	dal.Pagination
	Name   string `query:"name"`
	Code   string `query:"code"`
	Status *int8  `query:"status"`
}

// AssignMenusRequest 分配菜单请求
type AssignMenusRequest struct {
	MenuIDs []int64 `json:"menuIds"`
}
