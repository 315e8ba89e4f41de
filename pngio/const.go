// Package pngio reads and writes the PNG chunk stream: signature, IHDR,
// PLTE, tRNS, IDAT and IEND, with CRC checks, zlib compression, scanline
// filtering, Adam7 de-interlacing and a small set of decode-time sample
// transforms. Other chunks are passed to a caller-supplied handler.
//
// A Reader or Writer is a session. It must be closed on every path once
// created; LiveSessions reports how many are still open.
package pngio

// Signature starts every PNG datastream.
const Signature = "\x89PNG\r\n\x1a\n"

// Colour types, as stored in IHDR.
const (
	ColorGray      = 0
	ColorRGB       = 2
	ColorPalette   = 3
	ColorGrayAlpha = 4
	ColorRGBA      = 6
)

// Interlace methods.
const (
	InterlaceNone  = 0
	InterlaceAdam7 = 1
)

// Filter types.
const (
	ftNone    = 0
	ftSub     = 1
	ftUp      = 2
	ftAverage = 3
	ftPaeth   = 4
	nFilter   = 5
)

// Decoding stage. IHDR, PLTE, tRNS and IDAT must appear in that order;
// IDAT chunks are consecutive.
const (
	dsStart = iota
	dsSeenIHDR
	dsSeenPLTE
	dsSeentRNS
	dsSeenIDAT
	dsSeenIEND
)

// idatSize is the largest IDAT payload the writer emits.
const idatSize = 8192

// Limits on the declared image size, checked before any row buffer is
// allocated. maxDimension matches libpng's default user limit.
const (
	maxDimension  = 1_000_000
	maxImageBytes = 1 << 30
)

// adam7 holds the placement of the seven reduced images.
var adam7 = [7]pass{
	{8, 8, 0, 0},
	{8, 8, 4, 0},
	{4, 8, 0, 4},
	{4, 4, 2, 0},
	{2, 4, 0, 2},
	{2, 2, 1, 0},
	{1, 2, 0, 1},
}

var progressive = [1]pass{{1, 1, 0, 0}}

type pass struct {
	xFactor, yFactor, xOffset, yOffset int
}

// size returns the dimensions of the reduced image for this pass.
func (p pass) size(width, height int) (int, int) {
	w := (width - p.xOffset + p.xFactor - 1) / p.xFactor
	h := (height - p.yOffset + p.yFactor - 1) / p.yFactor
	return max(w, 0), max(h, 0)
}

// channels returns the number of samples per pixel for a colour type.
func channels(colorType int) int {
	switch colorType {
	case ColorGray, ColorPalette:
		return 1
	case ColorGrayAlpha:
		return 2
	case ColorRGB:
		return 3
	case ColorRGBA:
		return 4
	}
	return 0
}

// validDepth reports whether PNG allows depth for colorType.
func validDepth(colorType, depth int) bool {
	switch colorType {
	case ColorGray:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case ColorPalette:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	case ColorRGB, ColorGrayAlpha, ColorRGBA:
		return depth == 8 || depth == 16
	}
	return false
}
