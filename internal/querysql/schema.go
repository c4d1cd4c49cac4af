package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/ontoql/internal/ontology"
)

// Schema returns the CREATE TABLE statements of the relational layout for
// a's ontology, entities first, in declaration order.
//
// Abstract entity types get no table; queries on them are answered by an
// implementer. Entity-typed properties are stored as relation tables named
// after the property, like declared relations.
func Schema(a *ontology.Accessor) []string {
	var stmts []string
	links := make(map[string]bool)
	for _, e := range a.Entities() {
		if e.Abstract {
			continue
		}
		cols := []string{quote(IDColumn) + " TEXT PRIMARY KEY"}
		for _, name := range a.PropertiesOf(e.Name) {
			p, err := a.Property(name)
			if err != nil || p.Field() == IDColumn {
				continue
			}
			if _, isEntity := a.Entity(p.Type); isEntity {
				links[p.Name] = true
				continue
			}
			cols = append(cols, quote(p.Field())+" "+affinity(p))
		}
		stmts = append(stmts, createTable(e.Name, cols))
	}

	for _, r := range a.Ontology().Relations {
		cols := relationColumns()
		for _, name := range r.Properties {
			if p, err := a.Property(name); err == nil {
				cols = append(cols, quote(p.Field())+" "+affinity(p))
			}
		}
		stmts = append(stmts, createTable(r.Name, cols))
	}
	for _, p := range a.Ontology().Properties {
		if links[p.Name] {
			stmts = append(stmts, createTable(p.Name, relationColumns()))
		}
	}
	return stmts
}

func relationColumns() []string {
	return []string{
		quote(SourceColumn) + " TEXT NOT NULL",
		quote(TargetColumn) + " TEXT NOT NULL",
	}
}

func createTable(name string, cols []string) string {
	return fmt.Sprintf("CREATE TABLE %s (%s)", quote(name), strings.Join(cols, ", "))
}

// affinity maps a property to a SQLite column type. Arrays and JSON are
// stored as JSON text.
func affinity(p ontology.Property) string {
	if p.Array {
		return "TEXT"
	}
	switch p.Type {
	case ontology.TypeInt, ontology.TypeLong, ontology.TypeBoolean:
		return "INTEGER"
	case ontology.TypeFloat:
		return "REAL"
	}
	return "TEXT"
}
