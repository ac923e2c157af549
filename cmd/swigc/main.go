// Command swigc compiles swig templates into JavaScript modules.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"git.sr.ht/~sircmpwn/getopt"
	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	metrics "github.com/hashicorp/go-metrics"
	"github.com/tevino/abool/v2"

	"github.com/xgrommx/swig"
	"github.com/xgrommx/swig/compilelog"
	"github.com/xgrommx/swig/loader"
)

const version = "0.1.0"

type options struct {
	workingDir string
	outputDir  string
	logPath    string

	// failuresAllowed is how many templates may fail before the batch
	// stops.
	failuresAllowed int

	verbose bool
	stats   bool

	templates []string
}

var (
	errorPrefix   = color.New(color.FgRed, color.Bold)
	warningPrefix = color.New(color.FgMagenta, color.Bold)
)

func errorf(w io.Writer, format string, args ...interface{}) {
	errorPrefix.Fprint(w, "swigc: error: ")
	fmt.Fprintf(w, format+"\n", args...)
}

func warningf(w io.Writer, format string, args ...interface{}) {
	warningPrefix.Fprint(w, "swigc: warning: ")
	fmt.Fprintf(w, format+"\n", args...)
}

func usage() {
	fmt.Fprintf(os.Stderr,
		"usage: swigc [options] templates...\n"+
			"\n"+
			"options:\n"+
			"  -C DIR   change to DIR before doing anything else\n"+
			"  -o DIR   write compiled templates to DIR, or to stdout with '-' [default=.]\n"+
			"  -l FILE  record compiled templates in FILE and skip unchanged ones\n"+
			"  -k N     keep going until N templates fail (0 means infinity) [default=1]\n"+
			"  -v       show debug logs\n"+
			"  -d MODE  enable debugging (use '-d list' to list modes)\n"+
			"  -V       print swigc version (%q)\n",
		version)
}

// readFlags parses args into opts. It returns an exit code, or -1 if swigc
// should continue.
func readFlags(args []string, opts *options) int {
	parsed, optind, err := getopt.Getopts(args, "C:o:l:k:vd:hV")
	if err != nil {
		errorf(os.Stderr, "%v", err)
		usage()
		return 2
	}

	for _, opt := range parsed {
		switch opt.Option {
		case 'C':
			opts.workingDir = opt.Value
		case 'o':
			opts.outputDir = opt.Value
		case 'l':
			opts.logPath = opt.Value
		case 'k':
			n, err := strconv.Atoi(opt.Value)
			if err != nil {
				errorf(os.Stderr, "-k parameter not numeric; did you mean -k 0?")
				return 2
			}
			opts.failuresAllowed = n
		case 'v':
			opts.verbose = true
		case 'd':
			switch opt.Value {
			case "stats":
				opts.stats = true
			case "list":
				fmt.Print("debugging modes:\n" +
					"  stats  print compile timings and counters after the batch\n")
				return 0
			default:
				errorf(os.Stderr, "unknown debug setting '%s'", opt.Value)
				return 2
			}
		case 'V':
			fmt.Println(version)
			return 0
		default:
			usage()
			return 2
		}
	}

	opts.templates = args[optind:]
	if len(opts.templates) == 0 {
		usage()
		return 2
	}
	return -1
}

func realMain(args []string) int {
	opts := options{outputDir: ".", failuresAllowed: 1}
	if code := readFlags(args, &opts); code >= 0 {
		return code
	}

	level := hclog.Warn
	if opts.verbose {
		level = hclog.Debug
	}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "swigc",
		Level:  level,
		Output: os.Stderr,
		Color:  hclog.AutoColor,
	})

	if opts.workingDir != "" {
		if err := os.Chdir(opts.workingDir); err != nil {
			errorf(os.Stderr, "chdir to '%s': %v", opts.workingDir, err)
			return 1
		}
	}

	var inm *metrics.InmemSink
	if opts.stats {
		inm = metrics.NewInmemSink(time.Hour, time.Hour)
		cfg := metrics.DefaultConfig("swigc")
		cfg.EnableHostname = false
		cfg.EnableRuntimeMetrics = false
		if _, err := metrics.NewGlobal(cfg, inm); err != nil {
			warningf(os.Stderr, "metrics disabled: %v", err)
			inm = nil
		}
	}

	fs, err := loader.NewFileSystem(".", 0, logger)
	if err != nil {
		errorf(os.Stderr, "%v", err)
		return 1
	}
	engine, err := swig.New(&swig.Options{Loader: fs, Logger: logger})
	if err != nil {
		errorf(os.Stderr, "%v", err)
		return 1
	}

	b := &batch{
		engine:          engine,
		outputDir:       opts.outputDir,
		failuresAllowed: opts.failuresAllowed,
		logger:          logger,
		stdout:          os.Stdout,
		stderr:          os.Stderr,
		interrupted:     abool.NewBool(false),
	}

	if opts.logPath != "" {
		if opts.outputDir == "-" {
			warningf(os.Stderr, "compile log '%s' is not used when writing to stdout", opts.logPath)
		} else {
			clog, err := compilelog.Open(opts.logPath)
			if err != nil {
				errorf(os.Stderr, "%v", err)
				return 1
			}
			defer clog.Close()
			b.log = clog
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)
	go func() {
		if _, ok := <-quit; ok {
			b.interrupted.Set()
		}
	}()

	summary, err := b.run(opts.templates)
	if inm != nil {
		reportMetrics(os.Stdout, inm)
	}
	logger.Debug("batch finished", "compiled", summary.compiled, "skipped", summary.skipped,
		"failed", summary.failed)
	if err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(realMain(os.Args))
}
