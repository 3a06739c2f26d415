package model

import (
	"github.com/goadmin/pkg/dal"
)

// Dept 部门模型。
// TreePath 为祖先ID链（逗号分隔），根节点哨兵为 "0"；
// 不变量：TreePath == 父部门.TreePath + "," + 父部门ID。
type Dept struct {
	dal.Model
	ParentID int64   `gorm:"default:0;index" json:"parentId"`
	TreePath string  `gorm:"size:255;default:'0';index" json:"treePath"`
	Name     string  `gorm:"size:50;not null" json:"name"`
	Code     string  `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Sort     int     `gorm:"default:0" json:"sort"`
	Status   int8    `gorm:"default:1" json:"status"`
	Children []*Dept `gorm:"-" json:"children,omitempty"`
}

// TableName 表名
func (Dept) TableName() string {
	return "sys_dept"
}

// RootTreePath 根部门树路径哨兵
const RootTreePath = "0"
