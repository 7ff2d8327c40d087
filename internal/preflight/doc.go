// Package preflight provides readiness checks for the programs and
// filesystem paths slidecap depends on.
//
// The CLI "slidecap check" command renders every result, and "slidecap scan"
// runs RunAll before touching any video so a missing decoder or an unwritable
// state directory fails fast instead of once per video.
//
// Tesseract and its language data are only checked when the configured mode
// uses text detection.
package preflight
