// Package main hosts the slidecap CLI entrypoint and command graph.
//
// "slidecap scan" walks each video, samples frames on a fixed time interval,
// and saves a PNG whenever the on-screen text or the picture changes. The
// other commands inspect the scan history ledger, scaffold configuration,
// and verify that ffmpeg, ffprobe, and tesseract are usable.
//
// Keep this package lean: change detection lives in internal/detect and the
// scan loop in internal/scan. Commands here only resolve configuration,
// build collaborators, and render results.
package main
