package ir

// Version constants for the record model and the engine.
const (
	// RecordVersion is the stored record format version.
	RecordVersion = "1"

	// EngineVersion is the insight engine version.
	EngineVersion = "0.1.0"
)
