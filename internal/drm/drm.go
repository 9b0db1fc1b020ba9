// Package drm has the DRM fourcc codes of the pixel formats that
// textures are uploaded in.
package drm

import "strings"

const (
	FormatARGB8888 = 'A' | ('R' << 8) | ('2' << 16) | ('4' << 24)
	FormatRGBA8888 = 'R' | ('A' << 8) | ('2' << 16) | ('4' << 24)
	FormatABGR8888 = 'A' | ('B' << 8) | ('2' << 16) | ('4' << 24)

	FormatBigEndian = 1 << 31
)

// Fourcc packs four characters into a format code.
func Fourcc(a, b, c, d byte) uint32 {
	return uint32(a) | (uint32(b) << 8) | (uint32(c) << 16) | (uint32(d) << 24)
}

// Name returns the four characters of a format code, such as "AB24".
func Name(format uint32) string {
	code := format &^ FormatBigEndian

	var sb strings.Builder
	for i := 0; i < 4; i++ {
		sb.WriteByte(byte(code >> (8 * i)))
	}
	if format&FormatBigEndian != 0 {
		sb.WriteString(" (big-endian)")
	}
	return sb.String()
}
