// Package imaging holds the raster primitives used for change detection:
// grayscale conversion, structural similarity, average hashing, and lossless
// PNG persistence.
//
// SSIM follows the common uniform-window definition (7x7 window, K1=0.01,
// K2=0.03, 8-bit data range, sample covariance) and returns an error instead
// of a score when the inputs cannot be compared.
package imaging
