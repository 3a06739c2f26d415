package menu

// CreateRequest 创建菜单请求
type CreateRequest struct {
	ParentID  int64  `json:"parentId"`
	Name      string `json:"name"`
	Type      int8   `json:"type"`
	Path      string `json:"path"`
	Component string `json:"component"`
	Perm      string `json:"perm"`
	Icon      string `json:"icon"`
	Visible   int8   `json:"visible"`
	Sort      int    `json:"sort"`
}

// UpdateRequest 更新菜单请求
type UpdateRequest struct {
	ParentID  int64  `json:"parentId"`
	Name      string `json:"name"`
	Type      int8   `json:"type"`
	Path      string `json:"path"`
	Component string `json:"component"`
	Perm      string `json:"perm"`
	Icon      string `json:"icon"`
	Visible   *int8  `json:"visible"`
	Sort      int    `json:"sort"`
}
