// Package logs reads slidecap's daily log files for the `slidecap logs`
// command.
//
// Latest picks the newest file in the log directory. A Tailer prints the last
// N lines and can then follow the file as a running scan appends to it,
// optionally keeping only the lines of one scan session. Memory use is
// bounded by N regardless of file size.
package logs
