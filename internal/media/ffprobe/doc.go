// Package ffprobe wraps the ffprobe JSON output needed to plan a frame scan.
//
// Inspect runs ffprobe once per video. The Result helpers pick the first
// video stream and resolve its frame rate from the rational r_frame_rate or
// avg_frame_rate fields, which is what the frame decoder and the sampling
// interval depend on.
package ffprobe
