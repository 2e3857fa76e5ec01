// Package audit records operator commands sent to the controller.
//
// Each command is one JSON line in audit.jsonl; the file is rotated by size
// and a bounded number of backups is kept.
package audit
