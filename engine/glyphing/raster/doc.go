/*
Package raster renders glyphs to bitmaps.

Glyphs are drawn in black, centered on a white square canvas, and reduced
to a 1-bit bitmap. Pixel differences between two bitmaps are measured as
the share of pixels in which they disagree.

Renderings are cached in a bounded LRU cache, as the same glyph of a
reference font is requested again and again when comparing candidates.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package raster

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.glyphs")
}
