// Package memrise implements the memrise-export course driver.
//
// Memrise has no write API. The course state is read from database and level
// pages saved from the course editor into an export directory, and changes are
// written as tab-separated batches into an outbox directory for the browser
// automation to paste:
//
//	add_level_<n>.tsv   one row per new word: course columns, then the stamp
//	updates.tsv         header row, then: ref, course columns, stamp
//
// Saved pages are tables whose header cells carry class "column" and whose
// rows carry class "thing" and a data-thing-id attribute. Pages whose file
// name contains "level<n>" (level-3.html, level_3.htm) assign that level to
// their rows. Rows still waiting in the outbox are read back as entries, so a
// second run before the automation has pasted them does not add them again.
package memrise
