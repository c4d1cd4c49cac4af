package ontology

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Ontology validation error codes (E100-E199).
const (
	ErrStructure       = "E100" // missing or malformed field
	ErrDuplicateName   = "E101" // name declared twice
	ErrUnknownProperty = "E102" // reference to an undeclared property
	ErrUnknownEntity   = "E103" // reference to an undeclared entity type
	ErrEmptyEnum       = "E104" // enumeration without values
	ErrNoImplementers  = "E105" // abstract entity type nothing implements
	ErrParentCycle     = "E106" // entity type is its own ancestor
	ErrUnknownType     = "E107" // property type is not primitive, enum or entity
)

// ValidationError is one ontology validation failure.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// InvalidError aggregates the validation failures of one ontology.
type InvalidError struct {
	Name   string
	Errors []ValidationError
}

func (e *InvalidError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid ontology %q (%d errors): %s", e.Name, len(e.Errors), strings.Join(msgs, "; "))
}

// IsInvalid reports whether err is an *InvalidError.
func IsInvalid(err error) bool {
	var ie *InvalidError
	return errors.As(err, &ie)
}

var (
	structValidate *validator.Validate
	namePattern    = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)
)

func init() {
	structValidate = validator.New()
	structValidate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = structValidate.RegisterValidation("gqlname", func(fl validator.FieldLevel) bool {
		return namePattern.MatchString(fl.Field().String())
	})
}

// Validate checks o and returns every failure found. Structural checks run
// first; referential checks only run on a structurally sound ontology.
func Validate(o *Ontology) []ValidationError {
	if errs := validateStructure(o); len(errs) > 0 {
		return errs
	}

	var errs []ValidationError
	errs = append(errs, validateNames(o)...)
	errs = append(errs, validateReferences(o)...)
	errs = append(errs, validateParents(o)...)
	return errs
}

func validateStructure(o *Ontology) []ValidationError {
	err := structValidate.Struct(o)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []ValidationError{{Field: "ontology", Message: err.Error(), Code: ErrStructure}}
	}

	errs := make([]ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Namespace()
		if _, rest, ok := strings.Cut(field, "."); ok {
			field = rest
		}
		errs = append(errs, ValidationError{Field: field, Message: structMessage(fe), Code: ErrStructure})
	}
	return errs
}

func structMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must have at least %s entries", fe.Param())
	case "gqlname":
		return fmt.Sprintf("%q is not a valid name", fe.Value())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// validateNames enforces a single namespace across every declared element so
// that Accessor.Match is unambiguous.
func validateNames(o *Ontology) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]string)
	claim := func(field, name string) {
		if prev, ok := seen[name]; ok {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("%q is already declared at %s", name, prev),
				Code:    ErrDuplicateName,
			})
			return
		}
		seen[name] = field
	}

	for i, p := range o.Properties {
		claim(fmt.Sprintf("properties[%d].name", i), p.Name)
	}
	for i, e := range o.Entities {
		claim(fmt.Sprintf("entities[%d].name", i), e.Name)
	}
	for i, r := range o.Relations {
		claim(fmt.Sprintf("relations[%d].name", i), r.Name)
	}
	for i, e := range o.Enums {
		claim(fmt.Sprintf("enums[%d].name", i), e.Name)

		values := make(map[string]bool, len(e.Values))
		for j, v := range e.Values {
			if values[v] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("enums[%d].values[%d]", i, j),
					Message: fmt.Sprintf("duplicate value %q", v),
					Code:    ErrDuplicateName,
				})
			}
			values[v] = true
		}
	}
	return errs
}

func validateReferences(o *Ontology) []ValidationError {
	var errs []ValidationError

	props := make(map[string]bool, len(o.Properties))
	for _, p := range o.Properties {
		props[p.Name] = true
	}
	entities := make(map[string]bool, len(o.Entities))
	for _, e := range o.Entities {
		entities[e.Name] = true
	}
	enums := make(map[string]bool, len(o.Enums))
	for _, e := range o.Enums {
		enums[e.Name] = true
	}

	checkProps := func(prefix string, names []string) {
		for j, name := range names {
			if !props[name] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.properties[%d]", prefix, j),
					Message: fmt.Sprintf("unknown property %q", name),
					Code:    ErrUnknownProperty,
				})
			}
		}
	}
	checkEntity := func(field, name string) {
		if !entities[name] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown entity type %q", name),
				Code:    ErrUnknownEntity,
			})
		}
	}

	for i, p := range o.Properties {
		if !IsPrimitive(p.Type) && !enums[p.Type] && !entities[p.Type] {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("properties[%d].type", i),
				Message: fmt.Sprintf("type %q is not a primitive, enumeration or entity type", p.Type),
				Code:    ErrUnknownType,
			})
		}
	}

	implemented := make(map[string]bool)
	for i, e := range o.Entities {
		prefix := fmt.Sprintf("entities[%d]", i)
		checkProps(prefix, e.Properties)
		for j, parent := range e.Parents {
			checkEntity(fmt.Sprintf("%s.parents[%d]", prefix, j), parent)
			if !e.Abstract {
				implemented[parent] = true
			}
		}
	}
	for i, e := range o.Entities {
		if e.Abstract && !implemented[e.Name] && !implementedTransitively(o, e.Name, implemented) {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("entities[%d]", i),
				Message: fmt.Sprintf("abstract entity type %q has no concrete implementer", e.Name),
				Code:    ErrNoImplementers,
			})
		}
	}

	for i, r := range o.Relations {
		prefix := fmt.Sprintf("relations[%d]", i)
		checkProps(prefix, r.Properties)
		for j, pair := range r.Pairs {
			checkEntity(fmt.Sprintf("%s.pairs[%d].from", prefix, j), pair.From)
			checkEntity(fmt.Sprintf("%s.pairs[%d].to", prefix, j), pair.To)
		}
	}

	for i, e := range o.Enums {
		if len(e.Values) == 0 {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("enums[%d].values", i),
				Message: fmt.Sprintf("enumeration %q has no values", e.Name),
				Code:    ErrEmptyEnum,
			})
		}
	}
	return errs
}

// implementedTransitively reports whether some abstract child of name has a
// concrete implementer.
func implementedTransitively(o *Ontology, name string, implemented map[string]bool) bool {
	seen := map[string]bool{name: true}
	queue := []string{name}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range o.Entities {
			if !e.Abstract || seen[e.Name] || !slices.Contains(e.Parents, cur) {
				continue
			}
			if implemented[e.Name] {
				return true
			}
			seen[e.Name] = true
			queue = append(queue, e.Name)
		}
	}
	return false
}

// validateParents reports each cycle in the parent relation once.
func validateParents(o *Ontology) []ValidationError {
	const (
		unvisited = iota
		onStack
		done
	)

	index := make(map[string]int, len(o.Entities))
	for i, e := range o.Entities {
		index[e.Name] = i
	}

	var errs []ValidationError
	state := make(map[string]int, len(o.Entities))
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		state[name] = onStack
		stack = append(stack, name)
		for _, parent := range o.Entities[index[name]].Parents {
			if _, ok := index[parent]; !ok {
				continue
			}
			switch state[parent] {
			case onStack:
				cycle := append(slices.Clone(stack[slices.Index(stack, parent):]), parent)
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("entities[%d].parents", index[name]),
					Message: "parent type cycle: " + strings.Join(cycle, " -> "),
					Code:    ErrParentCycle,
				})
			case unvisited:
				visit(parent)
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
	}

	for _, e := range o.Entities {
		if state[e.Name] == unvisited {
			visit(e.Name)
		}
	}
	return errs
}
