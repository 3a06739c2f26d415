package model

import (
	"github.com/goadmin/pkg/dal"
)

// User 用户模型
type User struct {
	dal.Model
	Username string  `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Nickname string  `gorm:"size:50" json:"nickname"`
	Password string  `gorm:"size:100;not null" json:"-"`
	DeptID   int64   `gorm:"default:0;index" json:"deptId"`
	Email    string  `gorm:"size:100" json:"email"`
	Phone    string  `gorm:"size:20" json:"phone"`
	Status   int8    `gorm:"default:1" json:"status"`
	Roles    []*Role `gorm:"many2many:sys_user_role;joinForeignKey:UserID;joinReferences:RoleID" json:"roles,omitempty"`
}

// TableName 表名
func (User) TableName() string {
	return "sys_user"
}

// RoleCodes 获取用户的角色编码集合
func (u *User) RoleCodes() []string {
	codes := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		codes = append(codes, r.Code)
	}
	return codes
}

// UserRole 用户角色关联
type UserRole struct {
	ID     int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID int64 `gorm:"index:idx_user_role;not null" json:"userId"`
	RoleID int64 `gorm:"index:idx_user_role;not null" json:"roleId"`
}

// TableName 表名
func (UserRole) TableName() string {
	return "sys_user_role"
}
