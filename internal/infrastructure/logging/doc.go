// Package logging builds the slog.Logger used throughout Bluehood Core.
//
// Every logger carries the service name and binary version as default
// fields, so log lines from different components can be correlated
// after the fact. Output format and level come from LoggingConfig:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, or text for local development
//	  output: "stdout"   # stdout or stderr
//
// Typical setup at process start:
//
//	logger := logging.New(cfg.Logging, version)
//	logger.Info("scan cycle complete", "devices", n)
//
// Components that accept an optional logger fall back to
// logging.Default() when none is set.
//
// Do not log MAC addresses at info level in shared deployments, and
// never log broker passwords or API tokens.
package logging
