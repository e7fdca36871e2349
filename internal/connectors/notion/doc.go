// Package notion reads a vocabulary database from Notion.
//
// Each database row becomes one domain.RawRow: the page id is the stable row
// identifier, the page's last edited time is its modification time, and each
// property is flattened to plain text under its column name.
//
// Requests go through a token-bucket limiter (Notion allows an average of
// three requests per second per integration) and 429 responses are retried
// after the delay the API asks for.
package notion
