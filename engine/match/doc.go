/*
Package match identifies the glyphs of scrambled fonts.

For every glyph of an unknown font, the matcher first tries a quick match:
the raw outline of the glyph is compared to the outlines of the coordinate
index, and the first similar one determines the character. Only if this
fails the glyph is rendered and hashed, and the characters of the
reference atlas with the nearest hashes become candidates. Ties between
candidates are broken by comparing renderings pixel by pixel. Glyphs
identified this way are added to the coordinate index.

Resulting tables are post-processed:

■ a fixed set of known confusions is corrected (e.g. 杲 → 果)

■ if more than one glyph was identified as 己, each of them is compared to
renderings of 已 and 己 taken from a font with known mapping

■ manual overrides for individual fonts are applied last

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package match

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.match'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.match")
}
