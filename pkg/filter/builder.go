package filter

// Builder 条件构建器
type Builder struct {
	expressions []Expression
	logic       LogicOperator
}

// NewBuilder 创建构建器
func NewBuilder() *Builder {
	return &Builder{
		expressions: make([]Expression, 0),
		logic:       LogicAnd,
	}
}

// Where 创建AND条件构建器
func Where() *Builder {
	return NewBuilder()
}

// Or 设置为OR逻辑
func (b *Builder) Or() *Builder {
	b.logic = LogicOr
	return b
}

// Eq 等于
func (b *Builder) Eq(field string, value interface{}) *Builder {
	return b.add(field, OpEq, value)
}

// Neq 不等于
func (b *Builder) Neq(field string, value interface{}) *Builder {
	return b.add(field, OpNeq, value)
}

// Gt 大于
func (b *Builder) Gt(field string, value interface{}) *Builder {
	return b.add(field, OpGt, value)
}

// Gte 大于等于
func (b *Builder) Gte(field string, value interface{}) *Builder {
	return b.add(field, OpGte, value)
}

// Lt 小于
func (b *Builder) Lt(field string, value interface{}) *Builder {
	return b.add(field, OpLt, value)
}

// Lte 小于等于
func (b *Builder) Lte(field string, value interface{}) *Builder {
	return b.add(field, OpLte, value)
}

// Like 模糊匹配
func (b *Builder) Like(field string, value string) *Builder {
	return b.add(field, OpLike, value)
}

// In 在列表中
func (b *Builder) In(field string, values interface{}) *Builder {
	return b.add(field, OpIn, values)
}

// NotIn 不在列表中
func (b *Builder) NotIn(field string, values interface{}) *Builder {
	return b.add(field, OpNotIn, values)
}

// IsNull 为空
func (b *Builder) IsNull(field string) *Builder {
	return b.add(field, OpIsNull, nil)
}

// NotNull 不为空
func (b *Builder) NotNull(field string) *Builder {
	return b.add(field, OpNotNull, nil)
}

// None 追加恒假条件
func (b *Builder) None() *Builder {
	b.expressions = append(b.expressions, None())
	return b
}

// Expr 追加子表达式，nil 表示无条件，直接忽略
func (b *Builder) Expr(expr Expression) *Builder {
	if expr != nil {
		b.expressions = append(b.expressions, expr)
	}
	return b
}

// Group 添加分组表达式
func (b *Builder) Group(fn func(*Builder)) *Builder {
	subBuilder := NewBuilder()
	fn(subBuilder)
	if expr := subBuilder.Build(); expr != nil {
		b.expressions = append(b.expressions, expr)
	}
	return b
}

func (b *Builder) add(field string, op Operator, value interface{}) *Builder {
	b.expressions = append(b.expressions, &FieldExpression{
		Field:    field,
		Operator: op,
		Value:    value,
	})
	return b
}

// Build 构建表达式，无任何条件时返回 nil
func (b *Builder) Build() Expression {
	if len(b.expressions) == 0 {
		return nil
	}

	if len(b.expressions) == 1 {
		return b.expressions[0]
	}

	return &LogicExpression{
		Logic:       b.logic,
		Expressions: b.expressions,
	}
}

// ToSQL 构建并转换为SQL
func (b *Builder) ToSQL(dialect Dialect) (string, []interface{}) {
	expr := b.Build()
	if expr == nil {
		return "", nil
	}
	return expr.ToSQL(dialect)
}

// And 组合多个表达式为AND，nil 会被忽略
func And(exprs ...Expression) Expression {
	b := NewBuilder()
	for _, e := range exprs {
		b.Expr(e)
	}
	return b.Build()
}
