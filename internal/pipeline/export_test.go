package pipeline

// Exported internals for white-box tests.
var (
	Assemble     = assemble
	ArtifactPath = artifactPath
)
