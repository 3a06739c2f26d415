package oplog

import "github.com/goadmin/pkg/dal"

// ListRequest 操作日志列表请求
type ListRequest struct {
	dal.Pagination
	Username string `query:"username"`
	Module   string `query:"module"`
	Action   string `query:"action"`
	Status   *int   `query:"status"`
}
