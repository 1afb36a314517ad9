/*
Package fontregistry keeps loaded fonts and their typecases.

Rendering a glyph needs a typecase, i.e. a font at a pixel size. Typecases
are expensive to create, so the registry creates them on first use and
holds them until their font is dropped. The reference font lives as long as
the application does, while a scrambled font is dropped right after it has
been resolved.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package fontregistry

import "github.com/npillmayer/schuko/tracing"

// tracer writes to trace with key 'jjfont.font'
func tracer() tracing.Trace {
	return tracing.Select("jjfont.font")
}
