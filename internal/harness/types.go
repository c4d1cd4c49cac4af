package harness

// CaseResult is the outcome of one case.
type CaseResult struct {
	Name string `json:"name"`

	// ID is the catalog id of the translated graph. Cases producing the
	// same graph share an id.
	ID string `json:"id,omitempty"`

	// Describe is the one-line descriptor of the graph.
	Describe string `json:"describe,omitempty"`

	// Props renders each EProp and EPropGroup as "<id> <props>".
	Props []string `json:"props,omitempty"`

	// SQL holds the compiled statements, one per root.
	SQL []string `json:"sql,omitempty"`

	// SQLError is set when the graph has no relational rendering.
	SQLError string `json:"sql_error,omitempty"`

	// Error is the translation error code, if translation failed.
	Error string `json:"error,omitempty"`

	// Message is the full translation error text.
	Message string `json:"message,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every case met its expectation and assertions.
	Pass bool `json:"pass"`

	Cases []CaseResult `json:"cases"`

	// Errors contains failure messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Cases:  []CaseResult{},
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
