// Command zagros-asm assembles a .zs source file into a raw Zagros byte
// image.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/aridashti/zagros/asm"
)

type options struct {
	Input  string `short:"i" long:"input" description:"path to .zs assembly source" required:"true"`
	Output string `short:"o" long:"output" description:"path to write the assembled byte image" required:"true"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "zagros-asm:", err)
		os.Exit(1)
	}
}

func run() error {
	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	src, err := os.ReadFile(opts.Input)
	if err != nil {
		return fmt.Errorf("read %q: %w", opts.Input, err)
	}

	program, err := asm.Assemble(opts.Input, string(src))
	if err != nil {
		return fmt.Errorf("assemble: %w", err)
	}

	if err := os.WriteFile(opts.Output, program, 0o644); err != nil {
		return fmt.Errorf("write %q: %w", opts.Output, err)
	}
	return nil
}
