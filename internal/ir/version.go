package ir

// Version constants for the run record and the engine.
const (
	// IRVersion is the run record schema version.
	IRVersion = "1"

	// EngineVersion is the pyrolog engine version.
	EngineVersion = "0.1.0"
)
