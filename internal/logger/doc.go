// Package logger wraps zap with a global sugared logger, context helpers
// (ToContext/FromContext/WithName/WithKV) and level parsing.
//
// The run loop and the hardware adapters take a context and extract the
// logger from it, so scoped fields such as the serial device or the broker
// follow every line logged on their behalf.
package logger
