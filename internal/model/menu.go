package model

import (
	"github.com/goadmin/pkg/dal"
)

// 菜单类型
const (
	MenuTypeCatalog int8 = 1 // 目录
	MenuTypeMenu    int8 = 2 // 菜单
	MenuTypeButton  int8 = 3 // 按钮
	MenuTypeEmbed   int8 = 4 // 内嵌
)

// Menu 菜单模型，按钮节点携带权限标识
type Menu struct {
	dal.Model
	ParentID  int64   `gorm:"default:0;index" json:"parentId"`
	TreePath  string  `gorm:"size:255;default:'0'" json:"treePath"`
	Name      string  `gorm:"size:50;not null" json:"name"`
	Type      int8    `gorm:"default:2" json:"type"`
	Path      string  `gorm:"size:255" json:"path"`
	Component string  `gorm:"size:255" json:"component"`
	Perm      string  `gorm:"size:100" json:"perm"` // 权限标识，非操作节点为空
	Icon      string  `gorm:"size:50" json:"icon"`
	Visible   int8    `gorm:"default:1" json:"visible"`
	Sort      int     `gorm:"default:0" json:"sort"`
	Children  []*Menu `gorm:"-" json:"children,omitempty"`
}

// TableName 表名
func (Menu) TableName() string {
	return "sys_menu"
}
