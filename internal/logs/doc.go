// Package logs reads the daemon log file for the CLI.
//
// Tail returns the last lines of the file or everything written after a
// byte offset, optionally waiting for new output. A file that shrinks below
// the saved offset is treated as rotated and read from the start. Filter
// narrows lines by severity, component, and session so one interview can be
// followed through a busy log; it understands both the console and JSON
// formats written by the logging package.
package logs
