/*
Package resolve coordinates the resolution of scrambled fonts.

Clients ask for the resolution table of a font. If the table is cached,
it is returned immediately. Otherwise the font is queued for resolution,
and the client waits for a bounded time for the result. A font is never
queued twice: as long as it is pending or being worked on, further requests
simply wait for the running resolution.

Resolutions are run by a fixed pool of workers. A single dispatcher
goroutine hands out queued fonts to idle workers and collects their
completion messages; on completion it wakes up every client waiting for the
font.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package resolve

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.resolve'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.resolve")
}
