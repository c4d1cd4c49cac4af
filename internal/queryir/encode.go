package queryir

import (
	"fmt"

	"github.com/roach88/ontoql/internal/constraint"
	"github.com/roach88/ontoql/internal/ir"
)

// Encode converts q into an IR object suitable for canonical JSON.
// Absent references are omitted rather than encoded as null.
func Encode(q *Query) ir.IRObject {
	nodes := make(ir.IRArray, 0, len(q.nodes))
	for _, n := range q.nodes {
		if n != nil {
			nodes = append(nodes, encodeNode(n))
		}
	}
	return ir.IRObject{
		"format_version": ir.IRString(ir.FormatVersion),
		"name":           ir.IRString(q.name),
		"ontology":       ir.IRString(q.ontology),
		"nodes":          nodes,
	}
}

// Hash returns the content hash of q's canonical encoding.
func Hash(q *Query) (string, error) {
	return ir.ContentHash(ir.DomainQuery, Encode(q))
}

func encodeNode(n Node) ir.IRObject {
	obj := ir.IRObject{
		"id":   ir.IRInt(n.NodeID()),
		"kind": ir.IRString(n.Kind()),
	}
	putRef := func(key string, id int) {
		if id != 0 {
			obj[key] = ir.IRInt(id)
		}
	}
	putETyped := func(e *ETyped) {
		obj["tag"] = ir.IRString(e.Tag)
		obj["type"] = ir.IRString(e.Type)
		obj["parents"] = encodeStrings(e.Parents)
		putRef("next", e.Next)
		putRef("branch", e.Branch)
	}
	putRel := func(r *Rel) {
		obj["tag"] = ir.IRString(r.Tag)
		obj["type"] = ir.IRString(r.Type)
		obj["dir"] = ir.IRString(r.Dir)
		obj["wrapper"] = ir.IRString(r.Wrapper)
		putRef("next", r.Next)
		putRef("branch", r.Branch)
	}

	switch v := n.(type) {
	case *Start:
		putRef("next", v.Next)
	case *ETyped:
		putETyped(v)
	case *EConcrete:
		putETyped(&v.ETyped)
		obj["concrete_id"] = ir.IRString(v.ConcreteID)
		obj["concrete_name"] = ir.IRString(v.ConcreteName)
	case *EUntyped:
		obj["tag"] = ir.IRString(v.Tag)
		obj["vtypes"] = encodeStrings(v.VTypes)
		obj["nvtypes"] = encodeStrings(v.NVTypes)
		putRef("next", v.Next)
		putRef("branch", v.Branch)
	case *EndPattern:
		obj["entity"] = encodeNode(v.Entity)
		obj["filter"] = encodeProps(v.Filter)
	case *Rel:
		putRel(v)
	case *RelPattern:
		putRel(&v.Rel)
		obj["lower"] = ir.IRInt(v.Length.Lower)
		obj["upper"] = ir.IRInt(v.Length.Upper)
	case *Quant1:
		obj["quant"] = ir.IRString(v.Quant)
		obj["next"] = encodeInts(v.Next)
		putRef("branch", v.Branch)
	case *HQuant:
		obj["quant"] = ir.IRString(v.Quant)
		obj["next"] = encodeInts(v.Next)
	case *OptionalComp:
		obj["next"] = encodeInts(v.Next)
	case *EProp:
		obj["prop"] = encodeProp(v.Prop)
	case *RelProp:
		obj["prop"] = encodeProp(v.Prop)
	case *EPropGroup:
		obj["group"] = encodeGroup(v.PropGroup)
	case *RelPropGroup:
		obj["group"] = encodeGroup(v.PropGroup)
	}
	return obj
}

func encodeStrings(ss []string) ir.IRArray {
	out := make(ir.IRArray, len(ss))
	for i, s := range ss {
		out[i] = ir.IRString(s)
	}
	return out
}

func encodeInts(ids []int) ir.IRArray {
	out := make(ir.IRArray, len(ids))
	for i, id := range ids {
		out[i] = ir.IRInt(id)
	}
	return out
}

func encodeProps(ps []Prop) ir.IRArray {
	out := make(ir.IRArray, len(ps))
	for i, p := range ps {
		out[i] = encodeProp(p)
	}
	return out
}

func encodeGroup(g PropGroup) ir.IRObject {
	groups := make(ir.IRArray, len(g.Groups))
	for i, sub := range g.Groups {
		groups[i] = encodeGroup(sub)
	}
	return ir.IRObject{
		"quant":  ir.IRString(g.Quant),
		"props":  encodeProps(g.Props),
		"groups": groups,
	}
}

func encodeProp(p Prop) ir.IRObject {
	obj := ir.IRObject{"name": ir.IRString(p.Name)}
	if p.Schematic != "" {
		obj["schematic"] = ir.IRString(p.Schematic)
	}
	if p.Constraint != nil {
		obj["constraint"] = encodeConstraint(p.Constraint)
	}
	switch e := p.Ext.(type) {
	case Nested:
		obj["ext"] = ir.IRObject{"kind": ir.IRString("nested"), "path": ir.IRString(e.Path)}
	case Ranked:
		obj["ext"] = ir.IRObject{"kind": ir.IRString("ranked"), "boost": ir.IRInt(e.Boost)}
	case Function:
		obj["ext"] = ir.IRObject{"kind": ir.IRString("function"), "aggregation": ir.IRString(e.Aggregation)}
	case Redundant:
		obj["ext"] = ir.IRObject{"kind": ir.IRString("redundant"), "name": ir.IRString(e.Name)}
	}
	return obj
}

func encodeParam(p constraint.NamedParameter) ir.IRObject {
	obj := ir.IRObject{"name": ir.IRString(p.Name)}
	if p.Value != nil {
		obj["value"] = p.Value
	}
	return obj
}

func encodeConstraint(c constraint.Constraint) ir.IRObject {
	switch v := c.(type) {
	case *constraint.Literal:
		return encodeConstraint(*v)
	case *constraint.Parameterized:
		return encodeConstraint(*v)
	case *constraint.JoinParameterized:
		return encodeConstraint(*v)
	case *constraint.OptionalUnary:
		return encodeConstraint(*v)
	case *constraint.InnerQuery:
		return encodeConstraint(*v)
	case *constraint.WhereBy:
		return encodeConstraint(*v)
	}

	obj := ir.IRObject{"op": ir.IRString(c.Operator())}
	switch v := c.(type) {
	case constraint.Literal:
		obj["kind"] = ir.IRString("literal")
		obj["operands"] = ir.IRArray(v.Operands)
		if v.Operands == nil {
			obj["operands"] = ir.IRArray{}
		}
	case constraint.Parameterized:
		obj["kind"] = ir.IRString("param")
		obj["param"] = encodeParam(v.Param)
	case constraint.JoinParameterized:
		obj["kind"] = ir.IRString("join_param")
		obj["param"] = encodeParam(v.Param)
		obj["join"] = ir.IRString(v.Join)
	case constraint.OptionalUnary:
		allowed := make(ir.IRArray, len(v.Allowed))
		for i, op := range v.Allowed {
			allowed[i] = ir.IRString(op)
		}
		obj["kind"] = ir.IRString("optional")
		obj["default"] = ir.IRString(v.Default)
		obj["allowed"] = allowed
		obj["param"] = encodeParam(v.Param)
	case constraint.InnerQuery:
		obj["kind"] = ir.IRString("inner")
		if sub, ok := v.Query.(*Query); ok && sub != nil {
			obj["query"] = Encode(sub)
		}
		obj["tag"] = ir.IRString(v.TagEntity)
		obj["field"] = ir.IRString(v.ProjectedField)
		obj["join"] = ir.IRString(v.Join)
	case constraint.WhereBy:
		obj["kind"] = ir.IRString("where_by")
		obj["tag"] = ir.IRString(v.TagEntity)
		obj["field"] = ir.IRString(v.ProjectedField)
		obj["join"] = ir.IRString(v.Join)
	}
	return obj
}

// Decode rebuilds a graph from its encoding and runs the Build checks on it.
func Decode(v ir.IRValue) (*Query, error) {
	obj, ok := v.(ir.IRObject)
	if !ok {
		return nil, fmt.Errorf("decode query: expected object, got %T", v)
	}
	d := &decoder{}
	if ver := d.str(obj, "format_version"); ver != ir.FormatVersion && d.err == nil {
		return nil, fmt.Errorf("decode query: unsupported format version %q", ver)
	}
	q := &Query{name: d.str(obj, "name"), ontology: d.str(obj, "ontology")}
	for i, raw := range d.arr(obj, "nodes") {
		nobj, ok := raw.(ir.IRObject)
		if !ok {
			return nil, fmt.Errorf("decode query: nodes[%d] is %T", i, raw)
		}
		n := d.node(nobj)
		if d.err != nil {
			return nil, fmt.Errorf("decode query: nodes[%d]: %w", i, d.err)
		}
		id := n.NodeID()
		if id < 0 {
			return nil, fmt.Errorf("decode query: nodes[%d] has negative id", i)
		}
		for len(q.nodes) <= id {
			q.nodes = append(q.nodes, nil)
		}
		if q.nodes[id] != nil {
			return nil, fmt.Errorf("decode query: duplicate node id %d", id)
		}
		q.nodes[id] = n
	}
	if d.err != nil {
		return nil, fmt.Errorf("decode query: %w", d.err)
	}
	if errs := Validate(q); len(errs) > 0 {
		return nil, &GraphError{Errors: errs}
	}
	return q, nil
}

// decoder reads typed fields and latches the first error.
type decoder struct {
	err error
}

func (d *decoder) fail(format string, args ...any) {
	if d.err == nil {
		d.err = fmt.Errorf(format, args...)
	}
}

func (d *decoder) str(obj ir.IRObject, key string) string {
	v, ok := obj[key]
	if !ok {
		return ""
	}
	s, ok := v.(ir.IRString)
	if !ok {
		d.fail("field %q: expected string, got %T", key, v)
	}
	return string(s)
}

func (d *decoder) num(obj ir.IRObject, key string) int {
	v, ok := obj[key]
	if !ok {
		return 0
	}
	n, ok := v.(ir.IRInt)
	if !ok {
		d.fail("field %q: expected integer, got %T", key, v)
	}
	return int(n)
}

func (d *decoder) arr(obj ir.IRObject, key string) ir.IRArray {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	a, ok := v.(ir.IRArray)
	if !ok {
		d.fail("field %q: expected array, got %T", key, v)
	}
	return a
}

func (d *decoder) obj(obj ir.IRObject, key string) ir.IRObject {
	v, ok := obj[key]
	if !ok {
		return nil
	}
	o, ok := v.(ir.IRObject)
	if !ok {
		d.fail("field %q: expected object, got %T", key, v)
	}
	return o
}

func (d *decoder) strs(obj ir.IRObject, key string) []string {
	a := d.arr(obj, key)
	if len(a) == 0 {
		return nil
	}
	out := make([]string, len(a))
	for i, v := range a {
		s, ok := v.(ir.IRString)
		if !ok {
			d.fail("field %q[%d]: expected string, got %T", key, i, v)
		}
		out[i] = string(s)
	}
	return out
}

func (d *decoder) ints(obj ir.IRObject, key string) []int {
	a := d.arr(obj, key)
	if len(a) == 0 {
		return nil
	}
	out := make([]int, len(a))
	for i, v := range a {
		n, ok := v.(ir.IRInt)
		if !ok {
			d.fail("field %q[%d]: expected integer, got %T", key, i, v)
		}
		out[i] = int(n)
	}
	return out
}

func (d *decoder) node(obj ir.IRObject) Node {
	id := d.num(obj, "id")
	etyped := func() ETyped {
		return ETyped{
			ID:      id,
			Tag:     d.str(obj, "tag"),
			Type:    d.str(obj, "type"),
			Parents: d.strs(obj, "parents"),
			Next:    d.num(obj, "next"),
			Branch:  d.num(obj, "branch"),
		}
	}
	rel := func() Rel {
		return Rel{
			ID:      id,
			Tag:     d.str(obj, "tag"),
			Type:    d.str(obj, "type"),
			Dir:     Direction(d.str(obj, "dir")),
			Wrapper: d.str(obj, "wrapper"),
			Next:    d.num(obj, "next"),
			Branch:  d.num(obj, "branch"),
		}
	}

	switch kind := Kind(d.str(obj, "kind")); kind {
	case KindStart:
		return &Start{ID: id, Next: d.num(obj, "next")}
	case KindETyped:
		e := etyped()
		return &e
	case KindEConcrete:
		return &EConcrete{ETyped: etyped(), ConcreteID: d.str(obj, "concrete_id"), ConcreteName: d.str(obj, "concrete_name")}
	case KindEUntyped:
		return &EUntyped{
			ID:      id,
			Tag:     d.str(obj, "tag"),
			VTypes:  d.strs(obj, "vtypes"),
			NVTypes: d.strs(obj, "nvtypes"),
			Next:    d.num(obj, "next"),
			Branch:  d.num(obj, "branch"),
		}
	case KindEndPattern:
		inner, ok := d.node(d.obj(obj, "entity")).(Entity)
		if !ok {
			d.fail("end pattern must wrap an entity")
			return &EndPattern{}
		}
		return &EndPattern{Entity: inner, Filter: d.props(d.arr(obj, "filter"))}
	case KindRel:
		r := rel()
		return &r
	case KindRelPattern:
		return &RelPattern{Rel: rel(), Length: Range{Lower: d.num(obj, "lower"), Upper: d.num(obj, "upper")}}
	case KindQuant1:
		return &Quant1{ID: id, Quant: QuantKind(d.str(obj, "quant")), Next: d.ints(obj, "next"), Branch: d.num(obj, "branch")}
	case KindHQuant:
		return &HQuant{ID: id, Quant: QuantKind(d.str(obj, "quant")), Next: d.ints(obj, "next")}
	case KindOptional:
		return &OptionalComp{ID: id, Next: d.ints(obj, "next")}
	case KindEProp:
		return &EProp{ID: id, Prop: d.prop(d.obj(obj, "prop"))}
	case KindRelProp:
		return &RelProp{ID: id, Prop: d.prop(d.obj(obj, "prop"))}
	case KindEPropGroup:
		return &EPropGroup{ID: id, PropGroup: d.group(d.obj(obj, "group"))}
	case KindRelPropGroup:
		return &RelPropGroup{ID: id, PropGroup: d.group(d.obj(obj, "group"))}
	default:
		d.fail("unknown node kind %q", kind)
		return &Start{ID: id}
	}
}

func (d *decoder) props(a ir.IRArray) []Prop {
	if len(a) == 0 {
		return nil
	}
	out := make([]Prop, len(a))
	for i, v := range a {
		o, ok := v.(ir.IRObject)
		if !ok {
			d.fail("props[%d]: expected object, got %T", i, v)
			continue
		}
		out[i] = d.prop(o)
	}
	return out
}

func (d *decoder) group(obj ir.IRObject) PropGroup {
	g := PropGroup{Quant: QuantKind(d.str(obj, "quant")), Props: d.props(d.arr(obj, "props"))}
	for i, v := range d.arr(obj, "groups") {
		o, ok := v.(ir.IRObject)
		if !ok {
			d.fail("groups[%d]: expected object, got %T", i, v)
			continue
		}
		g.Groups = append(g.Groups, d.group(o))
	}
	return g
}

func (d *decoder) prop(obj ir.IRObject) Prop {
	p := Prop{Name: d.str(obj, "name"), Schematic: d.str(obj, "schematic")}
	if c := d.obj(obj, "constraint"); c != nil {
		p.Constraint = d.constraint(c)
	}
	if ext := d.obj(obj, "ext"); ext != nil {
		switch kind := d.str(ext, "kind"); kind {
		case "nested":
			p.Ext = Nested{Path: d.str(ext, "path")}
		case "ranked":
			p.Ext = Ranked{Boost: int64(d.num(ext, "boost"))}
		case "function":
			p.Ext = Function{Aggregation: d.str(ext, "aggregation")}
		case "redundant":
			p.Ext = Redundant{Name: d.str(ext, "name")}
		default:
			d.fail("unknown prop extension %q", kind)
		}
	}
	return p
}

func (d *decoder) param(obj ir.IRObject) constraint.NamedParameter {
	return constraint.NamedParameter{Name: d.str(obj, "name"), Value: obj["value"]}
}

func (d *decoder) constraint(obj ir.IRObject) constraint.Constraint {
	op := constraint.Op(d.str(obj, "op"))
	join := constraint.JoinType(d.str(obj, "join"))
	switch kind := d.str(obj, "kind"); kind {
	case "literal":
		// Arity is re-checked by Validate after decoding.
		l := constraint.Literal{Op: op}
		if operands := d.arr(obj, "operands"); len(operands) > 0 {
			l.Operands = []ir.IRValue(operands)
		}
		return l
	case "param":
		return constraint.Parameterized{Op: op, Param: d.param(d.obj(obj, "param"))}
	case "join_param":
		return constraint.JoinParameterized{
			Parameterized: constraint.Parameterized{Op: op, Param: d.param(d.obj(obj, "param"))},
			Join:          join,
		}
	case "optional":
		var allowed []constraint.Op
		for _, s := range d.strs(obj, "allowed") {
			allowed = append(allowed, constraint.Op(s))
		}
		ou := constraint.OptionalUnary{
			Default: constraint.Op(d.str(obj, "default")),
			Allowed: allowed,
			Param:   d.param(d.obj(obj, "param")),
		}
		if op != ou.Default {
			selected, err := ou.WithOp(op)
			if err != nil {
				d.fail("%v", err)
				return ou
			}
			return selected
		}
		return ou
	case "inner":
		iq := constraint.InnerQuery{
			Op:             op,
			TagEntity:      d.str(obj, "tag"),
			ProjectedField: d.str(obj, "field"),
			Join:           join,
		}
		if sub := d.obj(obj, "query"); sub != nil {
			q, err := Decode(sub)
			if err != nil {
				d.fail("inner query: %v", err)
				return iq
			}
			iq.Query = q
		}
		return iq
	case "where_by":
		return constraint.WhereBy{
			Op:             op,
			TagEntity:      d.str(obj, "tag"),
			ProjectedField: d.str(obj, "field"),
			Join:           join,
		}
	default:
		d.fail("unknown constraint kind %q", kind)
		return nil
	}
}
