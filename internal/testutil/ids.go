package testutil

// FixedIDGenerator generates the same query id every time.
//
// This enables deterministic test execution and golden log comparison.
//
// Thread-safety: FixedIDGenerator is stateless and safe for concurrent use.
type FixedIDGenerator struct {
	id string
}

// NewFixedIDGenerator creates a new fixed query id generator.
//
// If id is empty, Generate() returns "test-query-default".
func NewFixedIDGenerator(id string) *FixedIDGenerator {
	if id == "" {
		id = "test-query-default"
	}
	return &FixedIDGenerator{id: id}
}

// Generate returns the fixed query id.
//
// Implements insight.QueryIDGenerator interface.
func (g *FixedIDGenerator) Generate() string {
	return g.id
}
