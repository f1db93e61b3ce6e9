// Package store persists and publishes the results of a completed sweep.
//
// A Sink receives the full result set once, after the run succeeded; partial
// result sets are never written. PostgresSink stores one row per task and
// AMQPSink publishes one event per task.
package store
