package dept

// CreateRequest 创建部门请求
type CreateRequest struct {
	ParentID int64  `json:"parentId"`
	Name     string `json:"name"`
	Code     string `json:"code"`
	Sort     int    `json:"sort"`
	Status   int8   `json:"status"`
}

// UpdateRequest 更新部门请求
type UpdateRequest struct {
	ParentID int64  `json:"parentId"`
	Name     string `json:"name"`
	Sort     int    `json:"sort"`
	Status   int8   `json:"status"`
}
