/*
Package parameters holds the tunable settings of the resolution engine.

Parameters are read from a schuko.Configuration. Every parameter has a
configuration key and a default value; keys not present in the
configuration keep their default.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package parameters

import (
	"fmt"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/npillmayer/schuko"
)

// Parameter identifies a setting.
type Parameter int

const (
	none Parameter = iota
	P_DATAROOT
	P_REMOTEURL
	P_REMOTERETRIES
	P_REMOTEBACKOFF
	P_REMOTETIMEOUT
	P_REFERENCEFONT
	P_DISAMBIGUATIONFONT
	P_CANVAS
	P_REFERENCESIZE
	P_UNKNOWNSIZE
	P_HASHSIZE
	P_FUZZ
	P_SENTINELS
	P_RENDERCACHE
	P_WORKERS
	P_WAITWINDOW
	P_LISTEN
	P_CONNECTIONS
	P_FONTPATTERN
	P_STOPPER
)

// DefaultRemoteURL is the location scrambled fonts are fetched from. It takes
// the font name as its single argument.
const DefaultRemoteURL = "http://static.jjwxc.net/tmp/fonts/%s.woff2?h=my.jjwxc.net"

// DefaultFontPattern matches request paths for resolution tables.
const DefaultFontPattern = `^/(jjwxcfont_\w{5})\.json$`

var keys = [P_STOPPER]string{
	P_DATAROOT:           "jjfont.root",
	P_REMOTEURL:          "jjfont.remote.url",
	P_REMOTERETRIES:      "jjfont.remote.retries",
	P_REMOTEBACKOFF:      "jjfont.remote.backoff",
	P_REMOTETIMEOUT:      "jjfont.remote.timeout",
	P_REFERENCEFONT:      "jjfont.reference.font",
	P_DISAMBIGUATIONFONT: "jjfont.disambiguation.font",
	P_CANVAS:             "jjfont.render.canvas",
	P_REFERENCESIZE:      "jjfont.render.size",
	P_UNKNOWNSIZE:        "jjfont.render.unknownsize",
	P_HASHSIZE:           "jjfont.hash.size",
	P_FUZZ:               "jjfont.match.fuzz",
	P_SENTINELS:          "jjfont.match.sentinels",
	P_RENDERCACHE:        "jjfont.render.cache",
	P_WORKERS:            "jjfont.workers",
	P_WAITWINDOW:         "jjfont.server.wait",
	P_LISTEN:             "jjfont.server.listen",
	P_CONNECTIONS:        "jjfont.server.connections",
	P_FONTPATTERN:        "jjfont.server.pattern",
}

func initParameters(p *[P_STOPPER]interface{}) {
	p[P_DATAROOT] = "."                          // a directory
	p[P_REMOTEURL] = DefaultRemoteURL            // a format string
	p[P_REMOTERETRIES] = 5                       // attempts
	p[P_REMOTEBACKOFF] = 500 * time.Millisecond  // linear step
	p[P_REMOTETIMEOUT] = 30 * time.Second        // per request
	p[P_REFERENCEFONT] = "FZLanTingHei-M-GBK.ttf" // a path or a system font file name
	p[P_DISAMBIGUATIONFONT] = "jjwxcfont_0055y"  // a scrambled font name
	p[P_CANVAS] = 228                            // pixels
	p[P_REFERENCESIZE] = 228                     // pixels
	p[P_UNKNOWNSIZE] = 223                       // pixels
	p[P_HASHSIZE] = 16                           // hash is size × size bits
	p[P_FUZZ] = 20                               // font units
	p[P_SENTINELS] = "x\u200d"                   // runes
	p[P_RENDERCACHE] = 1024                      // entries
	p[P_WORKERS] = runtime.NumCPU()              // goroutines
	p[P_WAITWINDOW] = 5 * time.Second            // client wait for a resolution
	p[P_LISTEN] = "localhost:23578"              // host:port
	p[P_CONNECTIONS] = 256                       // concurrent connections
	p[P_FONTPATTERN] = DefaultFontPattern        // a regular expression
}

// Key returns the configuration key of a parameter.
func (p Parameter) Key() string {
	if p <= none || p >= P_STOPPER {
		return ""
	}
	return keys[p]
}

func (p Parameter) String() string {
	if k := p.Key(); k != "" {
		return k
	}
	return fmt.Sprintf("Parameter(%d)", int(p))
}

// Parameters is a set of values for all parameters.
type Parameters struct {
	values [P_STOPPER]interface{}
}

// Defaults returns a parameter set holding default values only.
func Defaults() *Parameters {
	params := &Parameters{}
	initParameters(&params.values)
	return params
}

// FromConfig returns a parameter set with values taken from conf, if set,
// and defaults otherwise. Durations are configured in milliseconds.
func FromConfig(conf schuko.Configuration) *Parameters {
	params := Defaults()
	if conf == nil {
		return params
	}
	for p := none + 1; p < P_STOPPER; p++ {
		if !conf.IsSet(p.Key()) {
			continue
		}
		switch params.values[p].(type) {
		case int:
			params.values[p] = conf.GetInt(p.Key())
		case time.Duration:
			params.values[p] = time.Duration(conf.GetInt(p.Key())) * time.Millisecond
		default:
			params.values[p] = conf.GetString(p.Key())
		}
	}
	return params
}

// Set overrides the value of a parameter. Numeric parameters accept strings
// in decimal notation.
func (params *Parameters) Set(p Parameter, value interface{}) error {
	if p <= none || p >= P_STOPPER {
		return fmt.Errorf("no such parameter: %d", int(p))
	}
	switch params.values[p].(type) {
	case int:
		n, err := toInt(value)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", p, err)
		}
		params.values[p] = n
	case time.Duration:
		if d, ok := value.(time.Duration); ok {
			params.values[p] = d
			return nil
		}
		n, err := toInt(value)
		if err != nil {
			return fmt.Errorf("parameter %s: %w", p, err)
		}
		params.values[p] = time.Duration(n) * time.Millisecond
	default:
		params.values[p] = fmt.Sprintf("%v", value)
	}
	return nil
}

// String returns the value of a parameter as a string.
func (params *Parameters) String(p Parameter) string {
	return fmt.Sprintf("%v", params.values[p])
}

// Int returns the value of a numeric parameter.
func (params *Parameters) Int(p Parameter) int {
	switch v := params.values[p].(type) {
	case int:
		return v
	case time.Duration:
		return int(v / time.Millisecond)
	}
	return 0
}

// Duration returns the value of a duration parameter.
func (params *Parameters) Duration(p Parameter) time.Duration {
	if d, ok := params.values[p].(time.Duration); ok {
		return d
	}
	return 0
}

// Runes returns the value of a parameter as a set of runes.
func (params *Parameters) Runes(p Parameter) []rune {
	return []rune(params.String(p))
}

// Dump lists all parameters and their values, one per line.
func (params *Parameters) Dump() string {
	var b strings.Builder
	for p := none + 1; p < P_STOPPER; p++ {
		fmt.Fprintf(&b, "%-28s = %v\n", p.Key(), params.values[p])
	}
	return b.String()
}

func toInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case string:
		return strconv.Atoi(strings.TrimSpace(v))
	}
	return 0, fmt.Errorf("not a number: %v", value)
}
