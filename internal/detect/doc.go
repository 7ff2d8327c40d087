// Package detect decides whether a sampled frame shows new content.
//
// TextDetector compares OCR output against the last accepted text.
// ImageDetector compares a grayscale copy against the last accepted frame by
// structural similarity and falls back to average-hash distance when the
// similarity cannot be computed. Each detector owns its snapshot and only
// replaces it when it reports a change; the first frame it sees always
// counts as a change.
//
// Policy selects detectors by Mode. In combined mode both detectors run on
// every frame and the result is their OR, so neither snapshot falls behind.
package detect
