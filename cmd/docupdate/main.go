// docupdate fetches, verifies and applies incremental document updates.
//
// Usage:
//
//	docupdate fetch [flags] <document>   download, verify and append the update
//	docupdate url   [flags] <document>   print the update URL
//	docupdate sign  [flags] <body>       mint an update token for a body
//
// The update descriptor is read from a YAML metadata file given with
// --metadata. Trailer identifiers are scanned from the document's PDF trailer
// unless given with --id.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"fetch", "download, verify and append the update to a document", runFetch},
	{"url", "print the URL the update would be fetched from", runURL},
	{"sign", "mint an update token for a body file", runSign},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		return nil
	}
	for _, c := range commands {
		if c.name == args[0] {
			return c.run(ctx, args[1:], stdout, stderr)
		}
	}
	printUsage(stderr)
	return fmt.Errorf("unknown command %q", args[0])
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: docupdate <command> [flags] <file>")
	fmt.Fprintln(w)
	for _, c := range commands {
		fmt.Fprintf(w, "  %-6s %s\n", c.name, c.summary)
	}
}

// parseFlags parses args and returns the single positional argument.
func parseFlags(flagSet *pflag.FlagSet, args []string, stderr io.Writer) (string, error) {
	flagSet.SetOutput(stderr)
	if err := flagSet.Parse(args); err != nil {
		return "", err
	}
	rest := flagSet.Args()
	if len(rest) != 1 {
		return "", fmt.Errorf("%s: expected exactly one file argument, got %d", flagSet.Name(), len(rest))
	}
	return rest[0], nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, errors.New("invalid --log-level " + level)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
