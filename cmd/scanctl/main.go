// main.go - Command line scanner for the local host
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"golang.org/x/term"

	"devicescan/internal"
	"devicescan/internal/entropy"
	"devicescan/internal/hashing"
	"devicescan/internal/network"
	"devicescan/internal/visitors"
)

const (
	defaultShutdownTimeout = 30 * time.Second
)

// Command defines the interface for all command implementations
type Command interface {
	// Name returns the command name
	Name() string
	// Description returns the command description
	Description() string
	// Execute runs the command with the given app and args
	Execute(ctx context.Context, app *internal.Application, args []string) error
}

// The set of available commands
var commands = []Command{
	&ScanCommand{},
	&NetworkCommand{},
	&HashCommand{},
	&ProvidersCommand{},
	&HelpCommand{},
}

// output receives command results.
var output io.Writer = os.Stdout

func main() {
	flag.Parse()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v, cancelling...", sig)
		cancel()
	}()

	cmdName, args := parseArgs()

	cmd := findCommand(cmdName)
	if cmd == nil {
		showUsageAndExit()
	}

	app, err := internal.NewApp()
	if err != nil {
		log.Fatalf("Failed to initialize app: %v", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
		defer cancel()
		if err := app.Shutdown(shutdownCtx); err != nil {
			log.Printf("Warning: Cleanup error: %v", err)
		}
	}()

	if err := cmd.Execute(ctx, app, args); err != nil {
		log.Fatalf("Command failed: %v", err)
	}
}

// resolutionFlags are shared by the commands that resolve a network.
type resolutionFlags struct {
	timezone string
	target   string
}

func (f *resolutionFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.timezone, "tz", "", "IANA timezone used if every provider fails (default: host timezone)")
	fs.StringVar(&f.target, "target", "", "resolve this IP instead of the host's own address")
}

func (f *resolutionFlags) apply(ctx context.Context) context.Context {
	if f.timezone != "" {
		ctx = network.WithTimezone(ctx, f.timezone)
	}
	if f.target != "" {
		ctx = network.WithTargetIP(ctx, f.target)
	}
	return ctx
}

// ScanCommand fingerprints the local host and resolves its network.
type ScanCommand struct{}

func (c *ScanCommand) Name() string        { return "scan" }
func (c *ScanCommand) Description() string { return "Fingerprints this host and resolves its network" }

func (c *ScanCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	var rf resolutionFlags
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	sources := entropy.HostSources(app.Config.AppName, app.Logger)
	result, err := app.Scanner.Scan(rf.apply(ctx), sources)
	if err != nil {
		return fmt.Errorf("scan failed, run it again: %w", err)
	}
	return writeJSON(output, result)
}

// NetworkCommand runs network resolution only.
type NetworkCommand struct{}

func (c *NetworkCommand) Name() string        { return "network" }
func (c *NetworkCommand) Description() string { return "Resolves this host's network identity" }

func (c *NetworkCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	fs := flag.NewFlagSet("network", flag.ContinueOnError)
	var rf resolutionFlags
	rf.register(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	return writeJSON(output, app.Resolver.Resolve(rf.apply(ctx), app.Providers))
}

// HashCommand prints the visitor id of its arguments.
type HashCommand struct{}

func (c *HashCommand) Name() string { return "hash" }
func (c *HashCommand) Description() string {
	return "Prints the visitor id for the given source values"
}

func (c *HashCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	sources := make([]any, len(args))
	for i, arg := range args {
		sources[i] = parseSource(arg)
	}

	visitorID := visitors.SynthesizeID(sources...)
	return writeJSON(output, map[string]string{
		"visitorId": visitorID,
		"alias":     visitors.VisitorAlias(visitorID),
	})
}

// parseSource treats an argument as a number when it is already in the
// canonical form that number would print as, and as a string otherwise.
func parseSource(arg string) any {
	f, err := strconv.ParseFloat(arg, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return arg
	}
	if hashing.FormatNumber(f) != arg {
		return arg
	}
	return f
}

// ProvidersCommand prints the effective provider list.
type ProvidersCommand struct{}

func (c *ProvidersCommand) Name() string        { return "providers" }
func (c *ProvidersCommand) Description() string { return "Prints the provider list in precedence order" }

func (c *ProvidersCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	return writeJSON(output, map[string]any{"providers": app.Providers})
}

// HelpCommand implements a command to show usage information
type HelpCommand struct{}

// Name returns the command name
func (c *HelpCommand) Name() string {
	return "help"
}

// Description returns the command description
func (c *HelpCommand) Description() string {
	return "Shows usage information"
}

// Execute implements the help command
func (c *HelpCommand) Execute(ctx context.Context, app *internal.Application, args []string) error {
	printUsage(output)
	return nil
}

// writeJSON indents for terminals and writes compact JSON otherwise.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}

// Helper functions

// parseArgs parses the command name and arguments
func parseArgs() (string, []string) {
	args := flag.Args()
	if len(args) == 0 {
		return "help", []string{}
	}
	return args[0], args[1:]
}

// findCommand finds a command by name
func findCommand(name string) Command {
	for _, cmd := range commands {
		if cmd.Name() == name {
			return cmd
		}
	}
	return nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: scanctl [command] [args...]")
	fmt.Fprintln(w, "Available commands:")

	for _, cmd := range commands {
		fmt.Fprintf(w, "  %s: %s\n", cmd.Name(), cmd.Description())
	}
}

// showUsageAndExit shows usage information and exits
func showUsageAndExit() {
	printUsage(os.Stderr)
	os.Exit(1)
}
