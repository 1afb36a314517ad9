/*
Package integrity verifies cached fonts against the content site.

Fonts on the content site may be replaced under the same name. A cached
font whose SHA-1 differs from the remote copy, or which the site does not
serve anymore, is stale: it is removed together with its resolution table
and page, so the font will be resolved afresh on next request. A font
which cannot be fetched for other reasons is kept.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package integrity

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/jjfont/jjfont/core"
	"github.com/jjfont/jjfont/core/locate/resources"
	"github.com/jjfont/jjfont/core/table"
	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
)

// tracer traces to tracing key 'jjfont.integrity'.
func tracer() tracing.Trace {
	return tracing.Select("jjfont.integrity")
}

// Verdict is the outcome of checking a font.
type Verdict int

const (
	Consistent   Verdict = iota // local and remote copy agree
	Inconsistent                // local and remote copy differ
	Gone                        // remote copy does not exist anymore
	Unreachable                 // remote copy could not be fetched; kept
)

func (v Verdict) String() string {
	switch v {
	case Consistent:
		return "consistent"
	case Inconsistent:
		return "inconsistent"
	case Gone:
		return "gone"
	case Unreachable:
		return "unreachable"
	}
	return fmt.Sprintf("Verdict(%d)", int(v))
}

// Stale is a predicate: has the font to be removed?
func (v Verdict) Stale() bool {
	return v == Inconsistent || v == Gone
}

// Result is the check of a single font.
type Result struct {
	Font    string
	Verdict Verdict
	Local   string // hex SHA-1 of the cached copy
	Remote  string // hex SHA-1 of the remote copy, if fetched
	Removed bool
	Err     error
}

// PageRemover deletes the page of a font.
type PageRemover interface {
	RemovePage(name string) error
}

// Checker compares cached fonts to their remote copies.
type Checker struct {
	Fonts  *resources.FontLoader
	Remote resources.Fetcher
	Tables *table.Cache
	Pages  PageRemover // optional
}

func digest(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

// Check compares the cached copy of font name to the remote one.
func (c *Checker) Check(ctx context.Context, name string) Result {
	res := Result{Font: name}
	local, err := os.ReadFile(c.Fonts.Path(name))
	if err != nil {
		res.Verdict, res.Err = Unreachable, core.WrapError(err, core.EMISSING, "font %s not cached", name)
		return res
	}
	res.Local = digest(local)
	remote, err := c.Remote.Fetch(ctx, name)
	switch {
	case core.Is(err, core.EMISSING):
		tracer().Infof("font %s not found on remote", name)
		res.Verdict, res.Err = Gone, err
	case err != nil:
		tracer().Infof("cannot fetch font %s from remote: %v", name, err)
		res.Verdict, res.Err = Unreachable, err
	default:
		res.Remote = digest(remote)
		if res.Remote == res.Local {
			res.Verdict = Consistent
		} else {
			res.Verdict = Inconsistent
		}
	}
	return res
}

// Remove deletes font name with its table and page.
func (c *Checker) Remove(name string) error {
	if err := c.Fonts.Remove(name); err != nil {
		return err
	}
	if err := c.Tables.Remove(name); err != nil {
		return err
	}
	if c.Pages != nil {
		return c.Pages.RemovePage(name)
	}
	return nil
}

// Clean checks every cached font and removes the stale ones.
func (c *Checker) Clean(ctx context.Context) ([]Result, error) {
	names, err := c.Fonts.Cached()
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(names))
	for _, name := range names {
		if err = ctx.Err(); err != nil {
			return results, core.WrapError(err, core.EINTERNAL, "integrity check cancelled")
		}
		res := c.Check(ctx, name)
		if res.Verdict.Stale() {
			tracer().Infof("font %s is %s, removing", name, res.Verdict)
			if err := c.Remove(name); err != nil {
				tracer().Errorf("cannot remove font %s: %v", name, err)
				res.Err = err
			} else {
				res.Removed = true
			}
		}
		results = append(results, res)
	}
	return results, nil
}

// Report renders results as a colored table.
func Report(w io.Writer, results []Result) error {
	data := [][]string{{"Font", "Verdict", "Action"}}
	for _, res := range results {
		verdict, action := pterm.Green(res.Verdict), "kept"
		switch {
		case res.Removed:
			verdict, action = pterm.Red(res.Verdict), "removed"
		case res.Verdict.Stale():
			verdict, action = pterm.Red(res.Verdict), "removal failed"
		case res.Verdict == Unreachable:
			verdict = pterm.Yellow(res.Verdict)
		}
		data = append(data, []string{res.Font, verdict, action})
	}
	s, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, s)
	return err
}
