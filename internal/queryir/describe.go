package queryir

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/roach88/ontoql/internal/constraint"
)

const (
	chainArrow  = "──"
	branchArrow = "->"
)

// Describe renders q on one line, node by node in id order:
//
//	Start[0]:ETyped[Book:1]:Quant1[2]:{3|4}:EProp[3]:...
func Describe(q *Query) string {
	var parts []string
	for _, n := range q.nodes {
		if n != nil {
			parts = append(parts, DescribeNode(n))
		}
	}
	return strings.TrimSuffix(strings.Join(parts, ":"), ":")
}

// DescribeNode renders one node the way Describe does.
func DescribeNode(n Node) string {
	switch v := n.(type) {
	case *Start:
		return fmt.Sprintf("Start[%d]", v.ID)
	case *ETyped:
		return fmt.Sprintf("ETyped[%s:%d]", v.Type, v.ID)
	case *EConcrete:
		return fmt.Sprintf("EConcrete[%s:%d:ID[%s]]", v.Type, v.ID, v.ConcreteID)
	case *EUntyped:
		return fmt.Sprintf("EUntyped[%s:%d]", strings.Join(v.VTypes, "|"), v.ID)
	case *EndPattern:
		return fmt.Sprintf("EndPattern[%s]:%s", DescribeNode(v.Entity), describeProps(v.Filter))
	case *Rel:
		return fmt.Sprintf("Rel[%s:%d]", v.Type, v.ID)
	case *RelPattern:
		return fmt.Sprintf("RelPattern[%s:%d:%s]", v.Type, v.ID, v.Length)
	case *Quant1:
		return fmt.Sprintf("Quant1[%d]:%s", v.ID, describeSuccessors(v.Next))
	case *HQuant:
		return fmt.Sprintf("HQuant[%d]:%s", v.ID, describeSuccessors(v.Next))
	case *OptionalComp:
		return fmt.Sprintf("OptionalComp[%d]:%s", v.ID, describeSuccessors(v.Next))
	case *EProp:
		return fmt.Sprintf("EProp[%d]", v.ID)
	case *RelProp:
		return fmt.Sprintf("RelProp[%d]", v.ID)
	case *EPropGroup:
		return fmt.Sprintf("EPropGroup[%d]", v.ID)
	case *RelPropGroup:
		return fmt.Sprintf("RelPropGroup[%d]", v.ID)
	case nil:
		return "-"
	}
	return fmt.Sprintf("%v", n)
}

// DescribeWithProps renders a node followed by the props of g:
//
//	ETyped[Book:1]::[title<eq,Dune>, year<ge,1965>]
func DescribeWithProps(n Node, g PropGroup) string {
	return DescribeNode(n) + ":" + describeProps(g.allProps())
}

func describeSuccessors(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprint(id)
	}
	return "{" + strings.Join(parts, "|") + "}"
}

func describeProps(props []Prop) string {
	parts := make([]string, len(props))
	for i, p := range props {
		parts[i] = DescribeProp(p)
	}
	return ":[" + strings.Join(parts, ", ") + "]"
}

// DescribeProp renders a prop as name<constraint>. Projections render as
// name<projection>.
func DescribeProp(p Prop) string {
	if p.Constraint == nil {
		return p.Name + "<projection>"
	}
	return p.Name + "<" + constraint.Describe(p.Constraint) + ">"
}

// Print renders q as an indented tree. Chains of entities and relations
// share a line; each quantifier successor starts a new line under its
// quantifier. With withIDs false every node id is printed as "$".
//
//	└── Start
//	    ──Typ[Book:1]──Q[2]:{3|4}
//	                   └─?[3]:[title<projection>]
//	                   └-> Rel(wrote:4)──Typ[Author:5]
func Print(q *Query, withIDs bool) string {
	p := &printer{q: q, withIDs: withIDs}
	start, ok := q.node(0).(*Start)
	if !ok {
		return ""
	}
	p.lines = append(p.lines, "└── Start")
	if start.Next != 0 {
		p.chain(start.Next, "    "+chainArrow)
	}
	return strings.Join(p.lines, "\n")
}

type printer struct {
	q       *Query
	withIDs bool
	lines   []string
}

func (p *printer) id(id int) string {
	if p.withIDs {
		return fmt.Sprint(id)
	}
	return "$"
}

// chain prints the line beginning at id, then the lines of every
// quantifier successor and branch found along it.
func (p *printer) chain(id int, prefix string) {
	line := prefix
	lineIdx := len(p.lines)
	p.lines = append(p.lines, "")

	type pending struct {
		col int
		id  int
		sym string
	}
	var children []pending

	for cur := id; cur != 0; {
		n := p.q.node(cur)
		if n == nil {
			break
		}
		col := utf8.RuneCountInString(line)
		switch v := n.(type) {
		case Quantifier:
			line += p.segment(n)
			for _, s := range v.Successors() {
				children = append(children, pending{col: col, id: s})
			}
			if q1, ok := n.(*Quant1); ok && q1.Branch != 0 {
				children = append(children, pending{col: col, id: q1.Branch, sym: "└~> "})
			}
			cur = 0
		case Property:
			line += p.segment(n)
			cur = 0
		default:
			line += p.segment(n)
			next, branch := edges(n)
			if branch != 0 {
				children = append(children, pending{col: col, id: branch, sym: "└~> "})
			}
			cur = 0
			if len(next) > 0 {
				line += chainArrow
				cur = next[0]
			}
		}
	}
	p.lines[lineIdx] = strings.TrimSuffix(line, chainArrow)

	for _, c := range children {
		pad := strings.Repeat(" ", c.col)
		child := p.q.node(c.id)
		if child == nil {
			continue
		}
		if _, isProp := child.(Property); isProp && c.sym == "" {
			p.lines = append(p.lines, pad+"└─"+p.segment(child))
			continue
		}
		sym := c.sym
		if sym == "" {
			sym = "└" + branchArrow + " "
		}
		p.chain(c.id, pad+sym)
	}
}

func (p *printer) segment(n Node) string {
	switch v := n.(type) {
	case *ETyped:
		return fmt.Sprintf("Typ[%s:%s]", v.Type, p.id(v.ID))
	case *EConcrete:
		return fmt.Sprintf("Conc[%s:%s:%s]", v.Type, p.id(v.ID), v.ConcreteID)
	case *EUntyped:
		return fmt.Sprintf("UnTyp[%s:%s]", strings.Join(v.VTypes, "|"), p.id(v.ID))
	case *EndPattern:
		return p.segment(v.Entity) + "?" + describeProps(v.Filter)
	case *Rel:
		return fmt.Sprintf("Rel(%s:%s)", v.Type, p.id(v.ID))
	case *RelPattern:
		return fmt.Sprintf("Rel(%s:%s){%s}", v.Type, p.id(v.ID), v.Length)
	case *Quant1:
		return fmt.Sprintf("Q[%s]:%s", p.id(v.ID), describeSuccessors(v.Next))
	case *HQuant:
		return fmt.Sprintf("H[%s]:%s", p.id(v.ID), describeSuccessors(v.Next))
	case *OptionalComp:
		return fmt.Sprintf("O[%s]:%s", p.id(v.ID), describeSuccessors(v.Next))
	case *EProp:
		return fmt.Sprintf("?[%s]%s", p.id(v.ID), describeProps([]Prop{v.Prop}))
	case *RelProp:
		return fmt.Sprintf("?[%s]%s", p.id(v.ID), describeProps([]Prop{v.Prop}))
	case *EPropGroup:
		return fmt.Sprintf("?[%s]%s", p.id(v.ID), describeGroup(v.PropGroup))
	case *RelPropGroup:
		return fmt.Sprintf("?[%s]%s", p.id(v.ID), describeGroup(v.PropGroup))
	}
	return DescribeNode(n)
}

// describeGroup renders the props of g with nested groups in braces.
func describeGroup(g PropGroup) string {
	out := describeProps(g.Props)
	for _, sub := range g.Groups {
		out += "{" + string(sub.Quant) + describeGroup(sub) + "}"
	}
	return out
}
