package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (unreadable or invalid config, bad paths)
	ExitDataError   = 3 // Data error (malformed input, coherence findings)
	ExitNotFound    = 4 // Input file or resource not found
)
