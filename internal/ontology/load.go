package ontology

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"
	"gopkg.in/yaml.v3"
)

// CompileError is a load failure with its source position, when known.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Load reads an ontology from path. Directories and .cue files are loaded as
// CUE, .yaml, .yml and .json files as YAML.
func Load(path string) (*Ontology, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}
	if info.IsDir() {
		return LoadCUEDir(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load ontology: %w", err)
	}
	switch filepath.Ext(path) {
	case ".cue":
		return CompileCUE(data, path)
	case ".yaml", ".yml", ".json":
		return LoadYAML(bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("load ontology: unsupported file extension %q", filepath.Ext(path))
	}
}

// LoadYAML decodes an ontology document. Unknown keys are rejected.
func LoadYAML(r io.Reader) (*Ontology, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var o Ontology
	if err := dec.Decode(&o); err != nil {
		return nil, fmt.Errorf("decode ontology yaml: %w", err)
	}
	return &o, nil
}

// LoadCUEDir loads every CUE file of the package in dir.
func LoadCUEDir(dir string) (*Ontology, error) {
	instances := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(instances) == 0 {
		return nil, fmt.Errorf("load ontology: no CUE instances in %s", dir)
	}
	inst := instances[0]
	if inst.Err != nil {
		return nil, formatCUEError(inst.Err)
	}
	return compileRoot(cuecontext.New().BuildInstance(inst))
}

// CompileCUE compiles CUE source holding a top-level ontology struct.
func CompileCUE(src []byte, filename string) (*Ontology, error) {
	return compileRoot(cuecontext.New().CompileBytes(src, cue.Filename(filename)))
}

func compileRoot(root cue.Value) (*Ontology, error) {
	if err := root.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	v := root.LookupPath(cue.ParsePath("ontology"))
	if !v.Exists() {
		return nil, &CompileError{Field: "ontology", Message: "ontology is required", Pos: root.Pos()}
	}
	return Compile(v)
}

// Compile parses an ontology struct value. Entities, relations, properties
// and enums are CUE structs keyed by name, so their field order becomes the
// declaration order:
//
//	ontology: {
//		name: "library"
//		properties: title: {type: "string", schematic: "title_kw"}
//		entities: Book: {properties: ["title"]}
//		relations: writtenBy: {pairs: [{from: "Book", to: "Author"}]}
//		enums: Genre: ["SCIFI", "FANTASY"]
//	}
func Compile(v cue.Value) (*Ontology, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	o := &Ontology{}
	name, err := lookupString(v, "name", true)
	if err != nil {
		return nil, err
	}
	o.Name = name

	err = eachField(v, "properties", func(label string, fv cue.Value) error {
		p := Property{Name: label}
		var err error
		if p.Type, err = lookupString(fv, "type", true); err != nil {
			return err
		}
		if p.Schematic, err = lookupString(fv, "schematic", false); err != nil {
			return err
		}
		if p.Array, err = lookupBool(fv, "array"); err != nil {
			return err
		}
		o.Properties = append(o.Properties, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "entities", func(label string, fv cue.Value) error {
		e := EntityType{Name: label}
		var err error
		if e.Properties, err = lookupStrings(fv, "properties"); err != nil {
			return err
		}
		if e.Parents, err = lookupStrings(fv, "parents"); err != nil {
			return err
		}
		if e.Abstract, err = lookupBool(fv, "abstract"); err != nil {
			return err
		}
		o.Entities = append(o.Entities, e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "relations", func(label string, fv cue.Value) error {
		r := RelationshipType{Name: label}
		var err error
		if r.Pairs, err = parsePairs(fv); err != nil {
			return err
		}
		if r.Directional, err = lookupBool(fv, "directional"); err != nil {
			return err
		}
		if r.Properties, err = lookupStrings(fv, "properties"); err != nil {
			return err
		}
		o.Relations = append(o.Relations, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachField(v, "enums", func(label string, fv cue.Value) error {
		values, err := stringList(fv)
		if err != nil {
			return err
		}
		o.Enums = append(o.Enums, EnumeratedType{Name: label, Values: values})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return o, nil
}

// eachField calls fn for every regular field of the struct at path, in order.
// A missing struct is not an error.
func eachField(v cue.Value, path string, fn func(label string, fv cue.Value) error) error {
	sv := v.LookupPath(cue.ParsePath(path))
	if !sv.Exists() {
		return nil
	}
	iter, err := sv.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for iter.Next() {
		if err := fn(iter.Selector().Unquoted(), iter.Value()); err != nil {
			return err
		}
	}
	return nil
}

func parsePairs(v cue.Value) ([]Pair, error) {
	pv := v.LookupPath(cue.ParsePath("pairs"))
	if !pv.Exists() {
		return nil, &CompileError{Field: "pairs", Message: "relationship pairs are required", Pos: v.Pos()}
	}
	iter, err := pv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var pairs []Pair
	for iter.Next() {
		from, err := lookupString(iter.Value(), "from", true)
		if err != nil {
			return nil, err
		}
		to, err := lookupString(iter.Value(), "to", true)
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{From: from, To: to})
	}
	return pairs, nil
}

func lookupString(v cue.Value, path string, required bool) (string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		if required {
			return "", &CompileError{Field: path, Message: path + " is required", Pos: v.Pos()}
		}
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}

func lookupBool(v cue.Value, path string) (bool, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, formatCUEError(err)
	}
	return b, nil
}

func lookupStrings(v cue.Value, path string) ([]string, error) {
	fv := v.LookupPath(cue.ParsePath(path))
	if !fv.Exists() {
		return nil, nil
	}
	return stringList(fv)
}

func stringList(v cue.Value) ([]string, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var out []string
	for iter.Next() {
		s, err := iter.Value().String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		out = append(out, s)
	}
	return out, nil
}

// formatCUEError keeps the first CUE error and its position.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	if positions := cueerrors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
