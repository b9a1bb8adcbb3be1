package model

// Command is the host operating mode.
type Command string

const (
	// CommandServe is the interactive dev-server mode.
	CommandServe Command = "serve"
	// CommandBuild is a one-shot bundle.
	CommandBuild Command = "build"
)

// BuildConfig is the host configuration captured once it has been resolved.
type BuildConfig struct {
	Production bool
	Command    Command
}

// EmittedModule is the final text handed back to the host.
// Map is always nil; source maps come from the compiler only.
type EmittedModule struct {
	Code string
	Map  *string
}

// FileStatus is the outcome of one file in a batch transform.
type FileStatus int

const (
	// Transformed indicates the file was compiled and written.
	Transformed FileStatus = iota
	// Cached indicates the file was unchanged since the last run.
	Cached
	// Skipped indicates the filter rejected the file.
	Skipped
	// Failed indicates the transform returned an error.
	Failed
)

func (s FileStatus) String() string {
	switch s {
	case Transformed:
		return "transformed"
	case Cached:
		return "cached"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// FileReport describes what happened to one source file.
type FileReport struct {
	Source   File
	Output   Path
	ScopeID  string
	Scoped   bool
	CSSBytes int
	Warnings []string
	Status   FileStatus
	Err      error
}
