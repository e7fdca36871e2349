// Package connectors holds the source readers lexisync can sync from.
// Each subpackage implements driven.SourceReader for one service.
package connectors
