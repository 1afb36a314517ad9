/*
Package coords keeps an index of glyph outlines with known meaning.

Scrambled fonts are derived from a small number of base fonts, so the same
outline shows up again and again behind different codepoints. Each time
a glyph is identified by image matching, its raw outline is appended to the
coordinate index together with the character it was identified as. Later
glyphs whose outline is within a small tolerance of an indexed outline are
identified without any rendering.

The index is append-only: it never shrinks and entries are never changed.
It is consulted in insertion order and the first similar outline wins.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package coords

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.coords'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.coords")
}
