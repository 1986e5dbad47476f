// Command qlogo is the CLI entrypoint: a thin wiring of the REPL to
// either plain console I/O or the GUI framing protocol, in the same
// flag.FlagSet-and-functional-options idiom the FIRST/THIRD VM's own
// entrypoint used, rather than a dependency-heavy CLI framework (spec
// 6.3 -- deliberately out of scope for deep investment).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/dcorbin/qlogo/internal/eval"
	"github.com/dcorbin/qlogo/internal/guiproto"
	"github.com/dcorbin/qlogo/internal/host"
	"github.com/dcorbin/qlogo/internal/library"
	"github.com/dcorbin/qlogo/internal/primitive"
	"github.com/dcorbin/qlogo/internal/registry"
	"github.com/dcorbin/qlogo/internal/repl"
	"github.com/dcorbin/qlogo/internal/streams"
)

// cliLog is the small leveled-logging surface this entrypoint actually
// needs -- a TRACE line per --trace, an ERROR line for a fatal setup
// failure or an unhandled SYSTEM-tagged REPL error, and an exit code
// that goes nonzero the moment anything is logged at ERROR -- rather
// than a general-purpose wrap/unwrap-able logger built for uses this
// command doesn't have.
type cliLog struct {
	exitCode int
}

func (l *cliLog) tracef(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "TRACE: "+format+"\n", args...)
}

func (l *cliLog) errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "ERROR: "+format+"\n", args...)
	l.exitCode = 1
}

func (l *cliLog) errorIf(err error) {
	if err != nil {
		l.errorf("%v", err)
	}
}

const version = "qlogo 0.1.0"

func main() {
	var (
		showHelp    bool
		showVersion bool
		libLoc      string
		helpLoc     string
		guiMode     bool
		trace       bool
	)
	flag.BoolVar(&showHelp, "help", false, "print usage and exit")
	flag.BoolVar(&showVersion, "version", false, "print the version and exit")
	flag.StringVar(&libLoc, "setlibloc", "", "override the standard-library database path")
	flag.StringVar(&helpLoc, "sethelploc", "", "override the help database path")
	flag.BoolVar(&guiMode, "QLogoGUI", false, "speak the binary framing protocol over stdin/stdout instead of plain text")
	flag.BoolVar(&trace, "trace", false, "log each top-level line before it runs")
	flag.Parse()

	if showHelp {
		flag.Usage()
		return
	}
	if showVersion {
		fmt.Println(version)
		return
	}

	log := &cliLog{}
	defer func() { os.Exit(log.exitCode) }()

	store, err := library.Open(context.Background(), libLoc, helpLoc)
	if err != nil {
		log.errorf("opening library/help databases: %v", err)
		return
	}
	defer store.Close()

	h := buildHost(guiMode)

	reg := registry.New()
	primitive.Register(reg, h)
	wireLibrary(reg, store)

	ev := eval.New(reg, eval.WithStreams(streams.NewManager(host.AsConsole(h))))
	r := repl.New(reg, ev, h)
	if trace {
		r.SetTrace(func(line string) { log.tracef("%s", line) })
	}

	log.errorIf(r.Run())
}

// buildHost answers spec 6.3's choice between plain console I/O
// (host.Headless over os.Stdin/os.Stdout, the default) and the GUI
// framing protocol (guiproto.Client over the same pair, when
// --QLogoGUI is given).
func buildHost(guiMode bool) host.Host {
	if guiMode {
		return guiproto.NewClient(stdio{})
	}
	return host.NewHeadless(os.Stdin, os.Stdout)
}

// stdio pairs os.Stdin/os.Stdout as the single io.ReadWriter the GUI
// framing codec reads and writes frames over.
type stdio struct{}

func (stdio) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdio) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

// wireLibrary installs reg's autoload hook so an unknown name tries the
// library database's stored TO/.MACRO source before Lookup/Procedure
// finally report it undefined, matching UCBLogo's "load from library on
// demand" behavior (spec 6.4).
func wireLibrary(reg *registry.Registry, store *library.Store) {
	reg.SetAutoloader(func(name string) bool {
		code, ok := store.Lookup(name)
		if !ok {
			return false
		}
		return repl.CompileProcedure(reg, code) == nil
	})
}
