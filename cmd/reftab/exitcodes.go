package main

// Exit codes. Dirty data findings (unmapped values, orphans, broken
// links) exit 0; only faults are nonzero.
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (missing config, not in a repository)
	ExitDataError   = 3 // Data error (malformed input, validation failure)
)
