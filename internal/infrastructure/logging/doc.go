// Package logging provides structured logging using uber/zap.
//
// Production output is JSON, development output is coloured console text.
// Field helpers keep credentials out of log lines: Secret records only
// whether a key was supplied, Preview bounds upstream bodies.
//
//	logger := logging.NewDefault()
//	logger.Info("relay finished", logging.Model(model), zap.Int("fragments", n))
package logging
