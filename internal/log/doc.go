// Package log builds fareplot's slog loggers and masks secrets in them.
//
// Route configurations may carry session cookies, extra request headers and
// proxy credentials, and those values end up in log attributes when a
// lookup is traced. SecureHandler wraps any slog.Handler and masks them:
//   - attributes whose key names a credential (cookie, authorization, token)
//   - header maps, per header
//   - bearer tokens, JWTs and long opaque strings detected by pattern
//   - the password part of proxy and request URLs
//
// Even in verbose mode the values stay masked so logs can be shared in
// bug reports.
//
//	logger, closer, err := log.Setup(os.Stderr, "logs/fareplot.log", verbose)
//	defer closer.Close()
//	logger.Info("lookup", "cookie", "session=abc123") // cookie=***REDACTED***
package log
