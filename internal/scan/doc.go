// Package scan turns a video into numbered screenshots of its distinct
// slides.
//
// A Scanner opens the video through a frames.Opener, samples one frame per
// configured interval, asks a detect.Policy whether the frame shows new
// content, and hands accepted frames to an Emitter that numbers and writes
// them. Every call to Scan is an independent session with fresh detectors,
// its own session ID, and an exclusive lock on the output directory.
//
// Failing to open a video is the only error that stops a session before it
// starts; OCR, similarity, and write failures are logged and the scan keeps
// going. ScanAll runs several videos one after another and never lets one
// failure stop the rest.
package scan
