package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (no repository, invalid config)
	ExitDataError   = 3 // Data error (malformed articles file)
	ExitNotFound    = 4 // Article not found
	ExitDuplicate   = 5 // Article already exists
)
