/*
Package publish exports resolution tables.

For every resolved font an HTML page lists its glyphs together with the
characters they resolve to. All tables together are bundled into a single
JSON file and a TypeScript module, and a static site with the pages and
bundles is assembled for publishing.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package publish

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.publish'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.publish")
}
