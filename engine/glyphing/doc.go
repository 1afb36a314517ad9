/*
Package glyphing deals with the glyphs of scrambled fonts.

A scrambled font maps codepoints to glyphs which display as other
characters. Package glyphing extracts these glyphs; sub-packages render
them to bitmaps (package raster) and compute perceptual hashes over the
renderings (package phash).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package glyphing

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.glyphs'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.glyphs")
}
