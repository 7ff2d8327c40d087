// Package frames supplies decoded video frames to the scanner.
//
// A Stream yields frames in decode order with a 0-based index and the
// stream frame rate. FFmpeg opens a file by probing it with ffprobe and
// piping raw RGB24 frames out of ffmpeg; SliceStream serves frames that are
// already in memory. Open failures are reported as *StreamOpenError.
package frames
