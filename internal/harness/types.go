package harness

// ArtifactResult is one contract's output within a scenario run.
type ArtifactResult struct {
	Contract  string `json:"contract"`
	MediaType string `json:"media_type"`
	Digest    string `json:"digest"`
	Size      int    `json:"size"`
	Data      []byte `json:"-"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every assertion held.
	Pass bool `json:"pass"`

	// LogDigest identifies the replayed event log.
	LogDigest string `json:"log_digest"`

	// Events is the number of events replayed from the store.
	Events int `json:"events"`

	// Artifacts holds one entry per scenario contract, in scenario order.
	Artifacts []ArtifactResult `json:"artifacts"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:      true,
		Artifacts: []ArtifactResult{},
		Errors:    []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddArtifact records a contract's artifact.
func (r *Result) AddArtifact(a ArtifactResult) {
	r.Artifacts = append(r.Artifacts, a)
}

// Artifact returns the artifact produced for contract.
func (r *Result) Artifact(contract string) (ArtifactResult, bool) {
	for _, a := range r.Artifacts {
		if a.Contract == contract {
			return a, true
		}
	}
	return ArtifactResult{}, false
}
