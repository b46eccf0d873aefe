package api

// v0 contains public types for early SDK usage.

// ConvertSpec describes a conversion job that can be stored in a file and
// replayed with `imgx convert --spec`.
type ConvertSpec struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	// Inputs are files or directories to convert.
	Inputs      []string `json:"inputs" yaml:"inputs"`
	Format      string   `json:"format" yaml:"format"`
	Quality     int      `json:"quality" yaml:"quality"`
	OutputDir   string   `json:"output_dir" yaml:"output_dir"`
	Pattern     string   `json:"pattern" yaml:"pattern"`
	Recursive   bool     `json:"recursive" yaml:"recursive"`
	Concurrency int      `json:"concurrency" yaml:"concurrency"`
	Overwrite   bool     `json:"overwrite" yaml:"overwrite"`
}

type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunRunning   RunStatus = "running"
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)
