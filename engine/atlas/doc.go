/*
Package atlas holds the perceptual hashes of the reference font.

An atlas maps every character of a window of the reference font (by
default the CJK Unified Ideographs U+4E00…U+9FA5) to the average hash of
its rendering. Unknown glyphs are identified by searching the atlas for
the hashes nearest to their own.

The atlas is expensive to compute and therefore persisted as a JSON object
from characters to hexadecimal hashes. A persisted atlas which cannot be
read is rebuilt.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package atlas

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.atlas'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.atlas")
}
