// Package filter 提供与持久层无关的查询条件表达式树。
// 业务层（数据权限过滤、列表查询）组合 Expression，由适配器翻译为具体方言的 SQL。
package filter

import (
	"fmt"
	"strings"
)

// Operator 比较操作符
type Operator string

const (
	OpEq      Operator = "="
	OpNeq     Operator = "!="
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpLike    Operator = "like"
	OpIn      Operator = "in"
	OpNotIn   Operator = "not in"
	OpIsNull  Operator = "is null"
	OpNotNull Operator = "is not null"
)

// LogicOperator 逻辑操作符
type LogicOperator string

const (
	LogicAnd LogicOperator = "AND"
	LogicOr  LogicOperator = "OR"
)

// Expression 条件表达式接口
type Expression interface {
	ToSQL(dialect Dialect) (string, []interface{})
	String() string
}

// FieldExpression 字段条件表达式
type FieldExpression struct {
	Field    string
	Operator Operator
	Value    interface{}
}

// ToSQL 转换为SQL片段与参数
func (e *FieldExpression) ToSQL(dialect Dialect) (string, []interface{}) {
	field := dialect.Quote(e.Field)

	switch e.Operator {
	case OpEq, OpNeq, OpGt, OpGte, OpLt, OpLte:
		return fmt.Sprintf("%s %s %s", field, e.Operator, dialect.Placeholder()), []interface{}{e.Value}
	case OpLike:
		return fmt.Sprintf("%s LIKE %s", field, dialect.Placeholder()), []interface{}{"%" + fmt.Sprint(e.Value) + "%"}
	case OpIn, OpNotIn:
		values := toSlice(e.Value)
		if len(values) == 0 {
			// 空集合的 IN 恒为假，NOT IN 恒为真
			if e.Operator == OpIn {
				return "1 = 0", nil
			}
			return "1 = 1", nil
		}
		placeholders := make([]string, len(values))
		for i := range values {
			placeholders[i] = dialect.Placeholder()
		}
		kw := "IN"
		if e.Operator == OpNotIn {
			kw = "NOT IN"
		}
		return fmt.Sprintf("%s %s (%s)", field, kw, strings.Join(placeholders, ", ")), values
	case OpIsNull:
		return fmt.Sprintf("%s IS NULL", field), nil
	case OpNotNull:
		return fmt.Sprintf("%s IS NOT NULL", field), nil
	default:
		return fmt.Sprintf("%s = %s", field, dialect.Placeholder()), []interface{}{e.Value}
	}
}

// String 转换为字符串表示
func (e *FieldExpression) String() string {
	switch e.Operator {
	case OpIn, OpNotIn:
		values := toSlice(e.Value)
		strValues := make([]string, len(values))
		for i, v := range values {
			strValues[i] = formatValue(v)
		}
		return fmt.Sprintf("%s %s [%s]", e.Field, e.Operator, strings.Join(strValues, ", "))
	case OpIsNull, OpNotNull:
		return fmt.Sprintf("%s %s", e.Field, e.Operator)
	default:
		return fmt.Sprintf("%s %s %s", e.Field, e.Operator, formatValue(e.Value))
	}
}

// LogicExpression 逻辑组合表达式
type LogicExpression struct {
	Logic       LogicOperator
	Expressions []Expression
}

// ToSQL 转换为SQL片段与参数
func (e *LogicExpression) ToSQL(dialect Dialect) (string, []interface{}) {
	if len(e.Expressions) == 0 {
		return "", nil
	}

	if len(e.Expressions) == 1 {
		return e.Expressions[0].ToSQL(dialect)
	}

	parts := make([]string, 0, len(e.Expressions))
	args := make([]interface{}, 0)

	for _, expr := range e.Expressions {
		sql, exprArgs := expr.ToSQL(dialect)
		if sql != "" {
			parts = append(parts, sql)
			args = append(args, exprArgs...)
		}
	}

	if len(parts) == 0 {
		return "", nil
	}

	if len(parts) == 1 {
		return parts[0], args
	}

	connector := " AND "
	if e.Logic == LogicOr {
		connector = " OR "
	}

	return "(" + strings.Join(parts, connector) + ")", args
}

// String 转换为字符串表示
func (e *LogicExpression) String() string {
	if len(e.Expressions) == 0 {
		return ""
	}

	parts := make([]string, len(e.Expressions))
	for i, expr := range e.Expressions {
		parts[i] = expr.String()
	}

	if len(parts) == 1 {
		return parts[0]
	}

	return "(" + strings.Join(parts, " "+string(e.Logic)+" ") + ")"
}

// NoneExpression 恒假表达式，用于"不可见任何行"的场景。
// 数据权限在主体无所属部门时必须收敛为空结果集，而不是省略条件。
type NoneExpression struct{}

// ToSQL 转换为SQL片段与参数
func (e *NoneExpression) ToSQL(dialect Dialect) (string, []interface{}) {
	return "1 = 0", nil
}

// String 转换为字符串表示
func (e *NoneExpression) String() string {
	return "none"
}

// None 创建恒假表达式
func None() Expression {
	return &NoneExpression{}
}

// toSlice 转换为切片
func toSlice(value interface{}) []interface{} {
	switch v := value.(type) {
	case []interface{}:
		return v
	case []string:
		result := make([]interface{}, len(v))
		for i, s := range v {
			result[i] = s
		}
		return result
	case []int:
		result := make([]interface{}, len(v))
		for i, n := range v {
			result[i] = n
		}
		return result
	case []int64:
		result := make([]interface{}, len(v))
		for i, n := range v {
			result[i] = n
		}
		return result
	default:
		return []interface{}{value}
	}
}

// formatValue 格式化值为字符串
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("'%s'", v)
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}
