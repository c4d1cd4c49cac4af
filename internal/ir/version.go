package ir

// Version constants for the serialized graph format.
const (
	// FormatVersion is the version of the canonical query graph encoding.
	FormatVersion = "1"

	// TranslatorVersion is the ontoql translator version.
	TranslatorVersion = "0.1.0"
)
