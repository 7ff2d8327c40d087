// Package ocr extracts on-screen text from frames by running the tesseract
// CLI. Each call encodes the frame as PNG, feeds it on stdin, and reads the
// recognized text from stdout.
package ocr
