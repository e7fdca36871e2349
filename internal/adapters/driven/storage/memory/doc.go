// Package memory provides in-memory implementations of driven port interfaces.
// They back tests and one-shot commands that need no persistence.
package memory
