package model

import (
	"github.com/goadmin/pkg/dal"
)

// 角色状态
const (
	RoleStatusEnabled  int8 = 1
	RoleStatusDisabled int8 = 0
)

// Role 角色模型。
// DataScope 数值越小可见范围越大（1=全部 2=本部门及下级 3=本部门 4=仅本人）。
type Role struct {
	dal.Model
	Name        string `gorm:"size:50;not null" json:"name"`
	Code        string `gorm:"size:50;uniqueIndex;not null" json:"code"`
	DataScope   int8   `gorm:"default:4" json:"dataScope"`
	Status      int8   `gorm:"default:1" json:"status"`
	Sort        int    `gorm:"default:0" json:"sort"`
	Description string `gorm:"size:255" json:"description"`
}

// TableName 表名
func (Role) TableName() string {
	return "sys_role"
}

// RoleMenu 角色菜单关联，其闭包构成角色的权限集合
type RoleMenu struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	RoleID int64 `gorm:"index:idx_role_menu;not null" json:"roleId"`
	MenuID int64 `gorm:"index:idx_role_menu;not null" json:"menuId"`
}

// TableName 表名
func (RoleMenu) TableName() string {
	return "sys_role_menu"
}
