// Package querysql renders query graphs as parameterized SQL over the
// relational layout produced by Schema: one table per concrete entity type
// keyed by id, and one table per relation type holding src and dst ids.
package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/ontoql/internal/constraint"
	"github.com/roach88/ontoql/internal/ir"
	"github.com/roach88/ontoql/internal/queryir"
)

// Relation table columns.
const (
	SourceColumn = "src"
	TargetColumn = "dst"
	IDColumn     = "id"
)

// Statement is the SQL for one root entity of a graph.
type Statement struct {
	// Root is the tag of the root entity, or its type when untagged.
	Root string

	// SQL is the statement text. Values never appear in it.
	SQL string

	// Args holds the positional parameters in placeholder order.
	Args []any

	// Columns names the result columns as label.property.
	Columns []string
}

// UnsupportedError reports a graph shape or operator with no SQL rendering.
type UnsupportedError struct {
	What string
}

func (e *UnsupportedError) Error() string {
	return "unsupported in SQL: " + e.What
}

// IsUnsupported reports whether err is (or wraps) an *UnsupportedError.
func IsUnsupported(err error) bool {
	var ue *UnsupportedError
	return errors.As(err, &ue)
}

// Compiler compiles query graphs to SQL for SQLite.
//
// Every statement carries an ORDER BY over the ids of its entities so result
// order is deterministic. All values are parameterized, never interpolated.
type Compiler struct {
	// Values binds named parameters. Parameters missing here fall back to
	// their defaults.
	Values map[string]ir.IRValue
}

// NewCompiler creates a Compiler with no bound values.
func NewCompiler() *Compiler {
	return &Compiler{Values: make(map[string]ir.IRValue)}
}

// Compile renders q. A graph that fans out from Start into several root
// entities yields one statement per root, in successor order.
func (c *Compiler) Compile(q *queryir.Query) ([]Statement, error) {
	if q == nil {
		return nil, errors.New("cannot compile nil query")
	}
	start, ok := q.Node(0)
	if !ok {
		return nil, errors.New("query has no start node")
	}
	first := start.(*queryir.Start).Next
	if first == 0 {
		return nil, errors.New("query selects no entity")
	}

	roots := []int{first}
	if fan, ok := mustNode(q, first).(*queryir.Quant1); ok {
		roots = fan.Next
	}

	stmts := make([]Statement, 0, len(roots))
	for _, id := range roots {
		st, err := c.compileRoot(q, id)
		if err != nil {
			return nil, fmt.Errorf("compile query %q: %w", q.QueryName(), err)
		}
		stmts = append(stmts, st)
	}
	return stmts, nil
}

func (c *Compiler) compileRoot(q *queryir.Query, id int) (Statement, error) {
	e, ok := mustNode(q, id).(*queryir.ETyped)
	if !ok {
		return Statement{}, &UnsupportedError{What: "root node " + queryir.DescribeNode(mustNode(q, id))}
	}

	s := &scope{q: q, values: c.Values, tags: make(map[string]string), counters: make(map[string]int)}
	alias := s.alias("t")
	s.from = append(s.from, fmt.Sprintf("%s AS %s", quote(e.Type), alias))
	where, err := s.entity(e, alias)
	if err != nil {
		return Statement{}, err
	}

	if len(s.columns) == 0 {
		s.columns = append(s.columns, alias+"."+IDColumn)
		s.names = append(s.names, label(e)+"."+IDColumn)
	}
	selectList := make([]string, len(s.columns))
	for i, col := range s.columns {
		selectList[i] = fmt.Sprintf("%s AS %s", col, quote(s.names[i]))
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(strings.Join(selectList, ", "))
	b.WriteString(" FROM ")
	b.WriteString(strings.Join(s.from, " "))
	if where != "" {
		b.WriteString(" WHERE ")
		b.WriteString(where)
	}
	b.WriteString(" ORDER BY ")
	b.WriteString(strings.Join(s.order, ", "))

	return Statement{Root: label(e), SQL: b.String(), Args: s.args, Columns: s.names}, nil
}

// scope accumulates the clauses of one statement.
type scope struct {
	q        *queryir.Query
	values   map[string]ir.IRValue
	tags     map[string]string
	counters map[string]int

	from    []string
	columns []string
	names   []string
	args    []any
	order   []string
}

func (s *scope) alias(prefix string) string {
	s.counters[prefix]++
	return fmt.Sprintf("%s%d", prefix, s.counters[prefix])
}

// entity registers e under alias and renders the conditions hanging off it.
func (s *scope) entity(e *queryir.ETyped, alias string) (string, error) {
	if e.Branch != 0 {
		return "", &UnsupportedError{What: "entity branch"}
	}
	if e.Tag != "" {
		s.tags[e.Tag] = alias
	}
	s.order = append(s.order, alias+"."+IDColumn+" ASC COLLATE BINARY")
	if e.Next == 0 {
		return "", nil
	}
	return s.step(e.Next, alias, label(e), false)
}

// step renders the node with id reached from the entity at alias.
func (s *scope) step(id int, alias, lbl string, optional bool) (string, error) {
	switch n := mustNode(s.q, id).(type) {
	case *queryir.Quant1:
		return s.quant(n, alias, lbl)
	case *queryir.EProp:
		return s.prop(n.Prop, alias, lbl)
	case *queryir.EPropGroup:
		return s.group(n.PropGroup, alias)
	case *queryir.Rel:
		return s.rel(n, alias, optional)
	case nil:
		return "", fmt.Errorf("node %d is not allocated", id)
	default:
		return "", &UnsupportedError{What: "node " + queryir.DescribeNode(n)}
	}
}

// quant combines the conditions of its successors: all with AND, some with
// OR. Relations under a some-quantifier become left joins whose match is one
// of the alternatives.
func (s *scope) quant(qn *queryir.Quant1, alias, lbl string) (string, error) {
	if qn.Branch != 0 {
		return "", &UnsupportedError{What: "quantifier branch"}
	}
	some := qn.Quant == queryir.QuantSome
	var parts []string
	for _, id := range qn.Next {
		cond, err := s.step(id, alias, lbl, some)
		if err != nil {
			return "", err
		}
		if cond != "" {
			parts = append(parts, cond)
		}
	}
	if some {
		return combine(parts, " OR "), nil
	}
	return combine(parts, " AND "), nil
}

func (s *scope) rel(r *queryir.Rel, from string, optional bool) (string, error) {
	if r.Branch != 0 {
		return "", &UnsupportedError{What: "relation branch"}
	}
	target, ok := mustNode(s.q, r.Next).(*queryir.ETyped)
	if !ok {
		return "", &UnsupportedError{What: fmt.Sprintf("relation %s without a typed target", r.Type)}
	}

	join := "INNER JOIN"
	if optional {
		join = "LEFT JOIN"
	}
	ra := s.alias("r")
	ta := s.alias("t")
	switch r.Dir {
	case queryir.DirR:
		s.from = append(s.from,
			fmt.Sprintf("%s %s AS %s ON %s.%s = %s.%s", join, quote(r.Type), ra, ra, SourceColumn, from, IDColumn),
			fmt.Sprintf("%s %s AS %s ON %s.%s = %s.%s", join, quote(target.Type), ta, ta, IDColumn, ra, TargetColumn))
	case queryir.DirL:
		s.from = append(s.from,
			fmt.Sprintf("%s %s AS %s ON %s.%s = %s.%s", join, quote(r.Type), ra, ra, TargetColumn, from, IDColumn),
			fmt.Sprintf("%s %s AS %s ON %s.%s = %s.%s", join, quote(target.Type), ta, ta, IDColumn, ra, SourceColumn))
	default:
		s.from = append(s.from,
			fmt.Sprintf("%s %s AS %s ON (%s.%s = %s.%s OR %s.%s = %s.%s)", join, quote(r.Type), ra,
				ra, SourceColumn, from, IDColumn, ra, TargetColumn, from, IDColumn),
			fmt.Sprintf("%s %s AS %s ON %s.%s = CASE WHEN %s.%s = %s.%s THEN %s.%s ELSE %s.%s END", join, quote(target.Type), ta,
				ta, IDColumn, ra, SourceColumn, from, IDColumn, ra, TargetColumn, ra, SourceColumn))
	}

	cond, err := s.entity(target, ta)
	if err != nil {
		return "", err
	}
	if !optional {
		return cond, nil
	}
	return combine([]string{ta + "." + IDColumn + " IS NOT NULL", cond}, " AND "), nil
}

// prop adds a projection column or renders a constrained prop.
func (s *scope) prop(p queryir.Prop, alias, lbl string) (string, error) {
	col := alias + "." + quote(p.Field())
	if p.IsProjection() {
		s.columns = append(s.columns, col)
		s.names = append(s.names, lbl+"."+p.Name)
		return "", nil
	}
	return s.predicate(col, p)
}

func (s *scope) group(g queryir.PropGroup, alias string) (string, error) {
	var parts []string
	for _, p := range g.Props {
		if p.IsProjection() {
			continue
		}
		cond, err := s.predicate(alias+"."+quote(p.Field()), p)
		if err != nil {
			return "", err
		}
		parts = append(parts, cond)
	}
	for _, sub := range g.Groups {
		cond, err := s.group(sub, alias)
		if err != nil {
			return "", err
		}
		if cond != "" {
			parts = append(parts, cond)
		}
	}
	if g.Quant == queryir.QuantSome {
		return combine(parts, " OR "), nil
	}
	return combine(parts, " AND "), nil
}

// predicate renders the constraint of p against col.
func (s *scope) predicate(col string, p queryir.Prop) (string, error) {
	if wb, ok := whereBy(p.Constraint); ok {
		other, ok := s.tags[wb.TagEntity]
		if !ok {
			return "", fmt.Errorf("prop %s compares against unknown entity tag %q", p.Name, wb.TagEntity)
		}
		sym, ok := comparisons[wb.Op]
		if !ok {
			return "", &UnsupportedError{What: "operator " + string(wb.Op) + " between fields"}
		}
		return fmt.Sprintf("%s %s %s.%s", col, sym, other, quote(wb.ProjectedField)), nil
	}

	bound, err := constraint.Bind(p.Constraint, s.values)
	if err != nil {
		return "", fmt.Errorf("bind %s: %w", p.Name, err)
	}
	lit, ok := bound.(constraint.Literal)
	if !ok {
		return "", &UnsupportedError{What: "constraint " + constraint.Describe(p.Constraint)}
	}
	params := make([]any, len(lit.Operands))
	for i, v := range lit.Operands {
		if params[i], err = irValueToParam(v); err != nil {
			return "", fmt.Errorf("prop %s: %w", p.Name, err)
		}
	}

	sql, err := render(col, lit.Op, len(params))
	if err != nil {
		return "", err
	}
	s.args = append(s.args, params...)
	return sql, nil
}

var comparisons = map[constraint.Op]string{
	constraint.OpEq: "=",
	constraint.OpNe: "<>",
	constraint.OpGt: ">",
	constraint.OpGe: ">=",
	constraint.OpLt: "<",
	constraint.OpLe: "<=",
}

// render returns the SQL for op applied to col with n placeholders.
func render(col string, op constraint.Op, n int) (string, error) {
	if sym, ok := comparisons[op]; ok {
		return fmt.Sprintf("%s %s ?", col, sym), nil
	}
	switch op {
	case constraint.OpEmpty:
		return col + " IS NULL", nil
	case constraint.OpNotEmpty:
		return col + " IS NOT NULL", nil
	case constraint.OpContains:
		return col + " LIKE '%' || ? || '%'", nil
	case constraint.OpNotContains:
		return col + " NOT LIKE '%' || ? || '%'", nil
	case constraint.OpStartsWith:
		return col + " LIKE ? || '%'", nil
	case constraint.OpNotStartsWith:
		return col + " NOT LIKE ? || '%'", nil
	case constraint.OpEndsWith:
		return col + " LIKE '%' || ?", nil
	case constraint.OpNotEndsWith:
		return col + " NOT LIKE '%' || ?", nil
	case constraint.OpLike:
		return col + " LIKE ?", nil
	case constraint.OpInSet:
		return fmt.Sprintf("%s IN (%s)", col, placeholders(n)), nil
	case constraint.OpNotInSet:
		return fmt.Sprintf("%s NOT IN (%s)", col, placeholders(n)), nil
	case constraint.OpLikeAny:
		likes := make([]string, n)
		for i := range likes {
			likes[i] = col + " LIKE ?"
		}
		return combine(likes, " OR "), nil
	case constraint.OpInRange:
		return col + " BETWEEN ? AND ?", nil
	case constraint.OpNotInRange:
		return col + " NOT BETWEEN ? AND ?", nil
	}
	return "", &UnsupportedError{What: "operator " + string(op)}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// combine joins parts with sep, parenthesizing when there is more than one.
func combine(parts []string, sep string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	switch len(kept) {
	case 0:
		return ""
	case 1:
		return kept[0]
	}
	return "(" + strings.Join(kept, sep) + ")"
}

func whereBy(c constraint.Constraint) (constraint.WhereBy, bool) {
	switch v := c.(type) {
	case constraint.WhereBy:
		return v, true
	case *constraint.WhereBy:
		return *v, true
	}
	return constraint.WhereBy{}, false
}

func label(e *queryir.ETyped) string {
	if e.Tag != "" {
		return e.Tag
	}
	return e.Type
}

func mustNode(q *queryir.Query, id int) queryir.Node {
	n, _ := q.Node(id)
	return n
}

// quote renders a SQL identifier.
func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

// irValueToParam converts an operand to a driver value. Decimals become
// float64; arrays and objects have no single-parameter form.
func irValueToParam(v ir.IRValue) (any, error) {
	switch val := v.(type) {
	case ir.IRString:
		return string(val), nil
	case ir.IRInt:
		return int64(val), nil
	case ir.IRDecimal:
		return val.Float64()
	case ir.IRBool:
		return bool(val), nil
	case ir.IRNull:
		return nil, nil
	case ir.IRArray:
		return nil, fmt.Errorf("IRArray cannot be used as SQL parameter directly")
	case ir.IRObject:
		return nil, fmt.Errorf("IRObject cannot be used as SQL parameter directly")
	default:
		return nil, fmt.Errorf("unsupported IRValue type for SQL parameter: %T", v)
	}
}
