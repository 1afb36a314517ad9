package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jjfont/jjfont/core/parameters"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'jjfont.cli'
func tracer() tracing.Trace {
	return tracing.Select("jjfont.cli")
}

// traceKeys are the tracers of all packages of this module.
var traceKeys = []string{
	"jjfont.cli",
	"jjfont.font",
	"jjfont.resources",
	"jjfont.glyphs",
	"jjfont.atlas",
	"jjfont.coords",
	"jjfont.table",
	"jjfont.match",
	"jjfont.resolve",
	"jjfont.server",
	"jjfont.publish",
	"jjfont.integrity",
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	confpath := flag.String("config", "", "Configuration file (.nt or .json)")
	root := flag.String("root", "", "Data root folder")
	fontname := flag.String("font", "", "Resolve a single font, e.g. jjwxcfont_00gxm")
	all := flag.Bool("all", false, "Resolve all cached fonts")
	fresh := flag.Bool("new", false, "Resolve cached fonts without a table")
	bundle := flag.Bool("bundle", false, "Bundle all tables into dist")
	patch := flag.Bool("patch", false, "Re-apply corrections and overrides to all tables")
	seed := flag.Bool("seed", false, "Add outlines of resolved fonts to the coordinate index")
	clean := flag.Bool("clean", false, "Remove cached fonts differing from the content site")
	serve := flag.Bool("serve", false, "Serve resolution tables over HTTP")
	flag.Parse()

	// set up logging and configuration
	conf, err := loadConfig(*confpath)
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(1)
	}
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())
	setTraceLevels(conf, *tlevel)
	params := parameters.FromConfig(conf)
	if *root != "" {
		params.Set(parameters.P_DATAROOT, *root)
	}
	tracer().Debugf("parameters:\n%s", params.Dump())
	pterm.Info.Println("Welcome to jjfont") // colored welcome message

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// commands not needing the matching engine
	switch {
	case *bundle:
		exit(runBundle(params))
	case *clean:
		exit(runClean(ctx, params))
	}
	//
	// everything else does
	pterm.Info.Println("Loading reference font and atlas, this may take a while")
	app, err := setup(ctx, params)
	if err != nil {
		exit(err)
	}
	switch {
	case *fontname != "":
		err = app.resolveFonts(ctx, []string{*fontname})
	case *all:
		err = app.resolveCached(ctx, false)
	case *fresh:
		err = app.resolveCached(ctx, true)
	case *patch:
		err = app.patch(ctx)
	case *seed:
		err = app.seed(ctx)
	case *serve:
		err = app.serve(ctx)
	default:
		flag.Usage()
	}
	exit(err)
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// setTraceLevels sets every tracer to the level configured for its key, or
// to level if none is configured.
func setTraceLevels(conf interface{ GetString(string) string }, level string) {
	for _, key := range traceKeys {
		l := level
		if configured := conf.GetString("trace." + key); configured != "" {
			l = configured
		}
		tracing.Select(key).SetTraceLevel(tracing.TraceLevelFromString(l))
	}
	tracer().Infof("Trace level is %s", level)
}

func exit(err error) {
	if err != nil {
		pterm.Error.Println(err.Error())
		os.Exit(2)
	}
	os.Exit(0)
}
