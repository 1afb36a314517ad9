/*
Package resources locates fonts and other files the resolution engine
depends on.

Scrambled fonts are fetched from the content site on first use and cached
in the fonts folder of the data root; subsequent loads are served from
disk. The reference font is located either by path or as a system font.

Loading a font may involve a download, so fonts can also be requested in
the background. Functions named

   Resolve…(…)

return a FontPromise right away. Calling Font or Await on the promise
blocks until the font has been loaded or loading has failed; Await gives up
early when its context is done.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.resources'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.resources")
}
