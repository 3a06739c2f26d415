package filter

import (
	"gorm.io/gorm"
)

// Scope 将表达式转换为 gorm Scope。
// nil 表达式不附加任何条件（不限制可见范围）。
func Scope(expr Expression) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if expr == nil {
			return db
		}
		sql, args := expr.ToSQL(dialectFor(db))
		if sql == "" {
			return db
		}
		return db.Where(sql, args...)
	}
}

// dialectFor 根据 gorm 连接推断方言
func dialectFor(db *gorm.DB) Dialect {
	if db == nil || db.Dialector == nil {
		return NewMySQLDialect()
	}
	return GetDialect(db.Dialector.Name())
}
