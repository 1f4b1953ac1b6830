package harness

// QueryError describes a failed query.
type QueryError struct {
	Class   string `json:"class"`          // insight.Class name
	Code    string `json:"code,omitempty"` // validation code, if any
	Message string `json:"message"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion holds.
	Pass bool `json:"pass"`

	// Rows are the query results as plain values (float64 or string).
	// Nil when the query failed.
	Rows []map[string]any `json:"rows,omitempty"`

	// Error is set when the query failed.
	Error *QueryError `json:"error,omitempty"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Errors: []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
