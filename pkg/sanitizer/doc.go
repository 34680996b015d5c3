// Package sanitizer normalizes user input before validation and storage.
//
// Every function is idempotent and total: malformed input comes back empty
// rather than as an error, and validation decides what to do with it.
package sanitizer
