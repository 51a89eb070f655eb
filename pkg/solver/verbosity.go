package solver

// Verbosity levels of the solver's logr output, aligned with the command's
// debug and trace log levels.
const (
	// logDebug traces iterations of a search.
	logDebug = 1
	// logTrace traces single evaluations.
	logTrace = 2
)
