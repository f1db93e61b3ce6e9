// Package logging provides the structured logging interface used by the
// sweep. The dispatcher, the data layer and the result sinks log through
// Logger; ZerologAdapter backs it with zerolog.
package logging
