/*
Package server serves resolution tables over HTTP.

Clients request /<fontname>.json. Cached tables are served with long-lived
caching headers and support conditional requests. For tables not yet
resolved, the request triggers a resolution and waits a few seconds for
it; if the table is still missing afterwards, the client receives a 404
which it may cache for a short time only.

All responses carrying a table, or telling the client to come back later,
allow cross-origin access.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package server

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'jjfont.server'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.server")
}
