/*
Package font is for font handling of scrambled and reference fonts.

We will stick to the following definitions:

* A "scalable font" is a font file, parsed and ready to be queried for
glyph outlines. Scrambled fonts arrive as WOFF2 containers and are unpacked
into plain SFNT data before parsing.

* A "typecase" is a scaled font, i.e. a font in a certain pixel size, ready
to render glyphs onto a canvas.

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

Outlines are taken from the 'glyf' table in font units, without hinting
and without normalization. Two outlines are comparable only if both come
from fonts with the same units-per-em, which holds for all scrambled fonts
of a deployment and for the reference font they were derived from.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package font

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'jjfont.font'
func tracer() tracing.Trace {
	return tracing.Select("jjfont.font")
}
