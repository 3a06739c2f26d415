package model

import (
	"github.com/goadmin/pkg/dal"
)

// OperationLog 操作日志
type OperationLog struct {
	dal.Model
	CreatedBy int64  `gorm:"default:0;index" json:"createdBy"`
	DeptID    int64  `gorm:"default:0;index" json:"deptId"`
	Username  string `gorm:"size:50" json:"username"`
	Module    string `gorm:"size:50" json:"module"`
	Action    string `gorm:"size:20" json:"action"`
	Method    string `gorm:"size:10" json:"method"`
	Path      string `gorm:"size:255" json:"path"`
	IP        string `gorm:"size:50" json:"ip"`
	Status    int    `gorm:"default:0" json:"status"`
	LatencyMs int64  `gorm:"default:0" json:"latencyMs"`
}

// TableName 表名
func (OperationLog) TableName() string {
	return "sys_operation_log"
}
