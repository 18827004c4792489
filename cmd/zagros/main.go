// Command zagros loads a Zagros program image (raw binary or .zs
// assembly source), runs it to completion, and optionally dumps or
// traces its final state.
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/aridashti/zagros/cli"
	"github.com/aridashti/zagros/op"
	"github.com/aridashti/zagros/vm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "zagros:", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := cli.Parse()
	if err != nil {
		return fmt.Errorf("parse options: %w", err)
	}

	cfg, err := cli.LoadConfig(opts.Config)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	program, err := cli.LoadProgram(opts.Program)
	if err != nil {
		return fmt.Errorf("load program: %w", err)
	}

	m := vm.NewVM(cfg)
	if e := m.LoadProgram(program, len(program)); e != op.None {
		return fmt.Errorf("load program into memory: %w", e)
	}

	if opts.Trace {
		m.Messages = make(chan vm.Message, 256)
		done := make(chan struct{})
		go func() {
			defer close(done)
			for msg := range m.Messages {
				log.Printf("core %d: %s: %s", msg.CoreID, msg.Type, msg.Text)
			}
		}()
		defer func() {
			close(m.Messages)
			<-done
		}()
	}

	result := m.Run()
	if result.Fault() {
		return fmt.Errorf("run: %w", result)
	}
	fmt.Printf("halted: %s\n", result)

	if opts.Dump {
		dumpTables(m)
	}
	if opts.DumpFile != "" {
		if err := writeSnapshot(m, opts.DumpFile); err != nil {
			return fmt.Errorf("write snapshot: %w", err)
		}
	}
	return nil
}

func dumpTables(m *vm.VM) {
	snap := m.Snapshot()
	for i, c := range m.Cores {
		fmt.Printf("core %d (active=%v, ip=0x%08x)\n", i, c.Active, c.IP)

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"register", "value"})
		for r := 0; r < c.Regs.Len(); r++ {
			_, v := c.Regs.Read(r)
			table.Append([]string{fmt.Sprintf("r%d", r), v.String()})
		}
		table.Render()

		stacks := tablewriter.NewWriter(os.Stdout)
		stacks.SetHeader([]string{"stack", "index", "value"})
		for j, v := range snap.Cores[i].Data {
			stacks.Append([]string{"data", fmt.Sprintf("%d", j), fmt.Sprintf("0x%08x", v)})
		}
		for j, v := range snap.Cores[i].Addrs {
			stacks.Append([]string{"addrs", fmt.Sprintf("%d", j), fmt.Sprintf("0x%08x", v)})
		}
		stacks.Render()
	}
}

func writeSnapshot(m *vm.VM, path string) error {
	data, err := m.Snapshot().MarshalCBOR()
	if err != nil {
		return fmt.Errorf("marshal cbor: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
