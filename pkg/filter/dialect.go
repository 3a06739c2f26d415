package filter

import "fmt"

// Dialect SQL方言接口
type Dialect interface {
	Quote(field string) string
	Placeholder() string
}

// MySQLDialect MySQL方言
type MySQLDialect struct{}

// NewMySQLDialect 创建MySQL方言
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

// Quote 引用字段名
func (d *MySQLDialect) Quote(field string) string {
	return "`" + field + "`"
}

// Placeholder 占位符
func (d *MySQLDialect) Placeholder() string {
	return "?"
}

// PostgreSQLDialect PostgreSQL方言
type PostgreSQLDialect struct {
	paramIndex int
}

// NewPostgreSQLDialect 创建PostgreSQL方言
func NewPostgreSQLDialect() *PostgreSQLDialect {
	return &PostgreSQLDialect{}
}

// Quote 引用字段名
func (d *PostgreSQLDialect) Quote(field string) string {
	return "\"" + field + "\""
}

// Placeholder 占位符（自增编号）
func (d *PostgreSQLDialect) Placeholder() string {
	d.paramIndex++
	return fmt.Sprintf("$%d", d.paramIndex)
}

// SQLiteDialect SQLite方言
type SQLiteDialect struct{}

// NewSQLiteDialect 创建SQLite方言
func NewSQLiteDialect() *SQLiteDialect {
	return &SQLiteDialect{}
}

// Quote 引用字段名
func (d *SQLiteDialect) Quote(field string) string {
	return "\"" + field + "\""
}

// Placeholder 占位符
func (d *SQLiteDialect) Placeholder() string {
	return "?"
}

// GetDialect 根据驱动名获取方言
func GetDialect(driver string) Dialect {
	switch driver {
	case "mysql":
		return NewMySQLDialect()
	case "postgres", "postgresql":
		return NewPostgreSQLDialect()
	case "sqlite", "sqlite3":
		return NewSQLiteDialect()
	default:
		return NewMySQLDialect()
	}
}
