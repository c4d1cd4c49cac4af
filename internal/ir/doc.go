// Package ir provides the literal value layer shared by the query IR.
//
// Constraint operands, named-parameter values and every serialized form of a
// query graph are expressed with the sealed IRValue types declared here. The
// package imports nothing internal so that constraint, queryir and the
// backends can all depend on it.
//
// Key design constraints:
//   - NO binary floats. Decimal literals are kept as their literal text
//     (IRDecimal) so canonical encoding stays byte-stable.
//   - Canonical JSON follows RFC 8785 (UTF-16 key order, NFC strings, no HTML
//     escaping) and is the only input to content hashing.
//   - All JSON tags use snake_case.
package ir
