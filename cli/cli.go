// Package cli provides the host-side flag and config-file parsing for
// cmd/zagros. It is an external collaborator per
// spec.md §1: nothing in vm/ or op/ knows this package exists.
package cli

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/jessevdk/go-flags"

	"github.com/aridashti/zagros/asm"
	"github.com/aridashti/zagros/vm"
)

// Options holds the flags accepted by cmd/zagros.
type Options struct {
	Program  string `short:"p" long:"program" description:"path to a raw byte image or .zs assembly source" required:"true"`
	Config   string `short:"c" long:"config" description:"path to a TOML file overriding the default vm.Config"`
	Trace    bool   `short:"t" long:"trace" description:"log every dispatched instruction and scheduling event"`
	Dump     bool   `short:"d" long:"dump" description:"print the final register/stack state of every core as tables"`
	DumpFile string `long:"dump-file" description:"write the final vm.Snapshot as CBOR to this path"`
}

// fileConfig mirrors vm.Config's fields for TOML decoding; a zero value
// for any field means "keep the default".
type fileConfig struct {
	MemSize   int `toml:"mem_size"`
	DataCap   int `toml:"data_cap"`
	AddrCap   int `toml:"addr_cap"`
	RegCap    int `toml:"reg_cap"`
	CoreCount int `toml:"core_count"`
	IntCap    int `toml:"int_cap"`
	IoCap     int `toml:"io_cap"`
	IoBegin   int `toml:"io_begin"`
	IoEnd     int `toml:"io_end"`
}

// Parse reads os.Args into Options.
func Parse() (Options, error) {
	var opts Options
	if _, err := flags.Parse(&opts); err != nil {
		return Options{}, fmt.Errorf("parse flags: %w", err)
	}
	return opts, nil
}

// LoadConfig returns vm.DefaultConfig() overridden by path's TOML content
// (any non-zero field replaces the default). An empty path returns the
// default unchanged.
func LoadConfig(path string) (vm.Config, error) {
	cfg := vm.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	var fc fileConfig
	if _, err := toml.DecodeFile(path, &fc); err != nil {
		return vm.Config{}, fmt.Errorf("decode config %q: %w", path, err)
	}
	applyOverride(&cfg.MemSize, fc.MemSize)
	applyOverride(&cfg.DataCap, fc.DataCap)
	applyOverride(&cfg.AddrCap, fc.AddrCap)
	applyOverride(&cfg.RegCap, fc.RegCap)
	applyOverride(&cfg.CoreCount, fc.CoreCount)
	applyOverride(&cfg.IntCap, fc.IntCap)
	applyOverride(&cfg.IoCap, fc.IoCap)
	applyOverride(&cfg.IoBegin, fc.IoBegin)
	applyOverride(&cfg.IoEnd, fc.IoEnd)
	return cfg, nil
}

func applyOverride(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// LoadProgram reads path and, if it ends in ".zs", assembles it;
// otherwise the file is treated as an already-assembled raw byte image.
func LoadProgram(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	if len(path) > 3 && path[len(path)-3:] == ".zs" {
		program, err := asm.Assemble(path, string(data))
		if err != nil {
			return nil, fmt.Errorf("assemble %q: %w", path, err)
		}
		return program, nil
	}
	return data, nil
}
