// Package ontology holds the typed catalogue that queries are validated
// against: entity types, relationship types, properties and enumerations.
//
// An Ontology is plain data loaded from CUE or YAML. Validate checks it
// structurally and referentially, and NewAccessor indexes a valid ontology
// for the read-only lookups the translation engine performs.
//
// Properties are declared once at ontology level and referenced by name from
// entities and relationships. A property's type is either a primitive (see
// Primitives), the name of an enumeration, or the name of an entity type; the
// last form makes the property a link to another typed node.
package ontology
