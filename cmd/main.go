package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/AdguardTeam/golibs/logutil/slogutil"
	"github.com/dustin/go-humanize"
	goFlags "github.com/jessevdk/go-flags"
	"github.com/lootkeeper/lootfilter/filterlist"
	"github.com/lootkeeper/lootfilter/filterutil"
	"github.com/lootkeeper/lootfilter/internal/config"
)

// Options -- console arguments
type Options struct {
	// Verbose - should we write debug-level log
	Verbose bool `short:"v" long:"verbose" description:"Verbose output (optional)." optional:"yes" optional-value:"true"`

	// FilterPath - path to the filter file
	FilterPath string `short:"f" long:"filter" description:"Path to the filter file." required:"true"`

	// ConfigPath - path to the YAML configuration
	ConfigPath string `short:"c" long:"config" description:"Path to the YAML configuration file. If not set, the defaults are used." default:""`
}

// app is the state shared by the commands.
type app struct {
	// stdin is the source of the item text for the match command.
	stdin io.Reader

	// stdout receives the output of the commands.
	stdout io.Writer

	// logOutput receives the log.
	logOutput io.Writer

	logger *slog.Logger
	conf   *config.Config
	opts   Options
}

func main() {
	a := &app{
		stdin:     os.Stdin,
		stdout:    os.Stdout,
		logOutput: os.Stderr,
	}

	os.Exit(a.run(os.Args[1:]))
}

// run parses the arguments and executes the command.  It returns the exit
// code.
func (a *app) run(args []string) (code int) {
	parser := a.newParser()

	_, err := parser.ParseArgs(args)
	if err != nil {
		if flagsErr, ok := err.(*goFlags.Error); ok && flagsErr.Type == goFlags.ErrHelp {
			return 0
		}

		return 1
	}

	return 0
}

// newParser returns the parser of the arguments with all commands added.
func (a *app) newParser() (parser *goFlags.Parser) {
	parser = goFlags.NewParser(&a.opts, goFlags.Default)

	cmds := []struct {
		data  any
		name  string
		short string
		long  string
	}{{
		data:  &importCommand{app: a},
		name:  "import",
		short: "Prepare a freshly downloaded filter.",
		long:  "Insert the custom and management rules and normalize the stacked tiers.",
	}, {
		data:  &matchCommand{app: a},
		name:  "match",
		short: "Find the rule applying to an item.",
		long:  "Read the item text as copied from the game and print the matching rule.",
	}, {
		data:  &visibilityCommand{app: a},
		name:  "visibility",
		short: "Show, hide, or disable a rule.",
		long:  "Set the visibility of the rule with the given type and tier tags.",
	}, {
		data:  &baseTypeCommand{app: a, remove: false},
		name:  "add-base",
		short: "Add base types to a rule.",
		long:  "Add base types to the BaseType list of the rule with the given tags.",
	}, {
		data:  &baseTypeCommand{app: a, remove: true},
		name:  "remove-base",
		short: "Remove base types from a rule.",
		long:  "Remove base types from the BaseType list of the rule with the given tags.",
	}}

	for _, c := range cmds {
		_, err := parser.AddCommand(c.name, c.short, c.long, c.data)
		if err != nil {
			// Don't wrap the error, because it's informative enough as is.
			panic(err)
		}
	}

	return parser
}

// init prepares the logger and the configuration.  It must be called by every
// command before doing anything else.
func (a *app) init() (err error) {
	a.logger = slogutil.New(&slogutil.Config{
		Output:       a.logOutput,
		Format:       slogutil.FormatText,
		AddTimestamp: false,
		Verbose:      a.opts.Verbose,
	})

	a.conf, err = config.Load(a.opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	return nil
}

// loadDocument reads and parses the filter.
func (a *app) loadDocument() (doc *filterlist.Document, err error) {
	text, err := filterutil.ReadFile(a.opts.FilterPath)
	if err != nil {
		return nil, err
	}

	c := a.conf.DocumentConfig()
	c.Logger = a.logger.With(slogutil.KeyPrefix, "filterlist")

	return filterlist.Parse(text, c)
}

// saveDocument writes the document back to the filter file.
func (a *app) saveDocument(doc *filterlist.Document) (err error) {
	err = doc.SaveToFile(a.opts.FilterPath)
	if err != nil {
		return err
	}

	fi, err := os.Stat(a.opts.FilterPath)
	if err != nil {
		return fmt.Errorf("getting file info: %w", err)
	}

	a.logger.Info("filter written", "size", humanize.Bytes(uint64(fi.Size())))

	return nil
}
