/*
Package log provides structured logging for lmstate using zerolog.

The package wraps github.com/rs/zerolog behind a tiny surface: an Init
function driven by CLI flags, a global Logger, and child-logger
constructors that attach the fields used across the codebase.

# Configuration

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: false, // console writer with timestamps
	})

Console output is the default and is meant for interactive CLI runs.
JSON output (--log-json) is for captured automation logs.

# Child Loggers

Convergence runs are correlated through child loggers rather than ambient
state:

	logger := log.WithResource("device", "web-01.example.com").With().
		Str("run_id", runID).
		Logger()
	logger.Info().Int("scope_id", scopeID).Msg("Resolved host group path")

Every log line emitted inside one convergence carries the run_id, the
resource kind and the resource name, so interleaved apply runs remain
attributable.

# Levels

Levels map directly onto zerolog levels: debug, info, warn, error. The
engine logs decisions at info (created, updated, deleted, no-op), wire
detail at debug, ambiguity tie-breaks at warn, and classified failures at
error.
*/
package log
