// Command vm-viewer is an interactive terminal browser for a vm.Snapshot
// dump (JSON or CBOR), grounded on the teacher's tcell/tview vm-viewer
// but built around a static snapshot instead of a live simulation.
package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/aridashti/zagros/vm"
)

func loadSnapshot(path string) (vm.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return vm.Snapshot{}, fmt.Errorf("read %q: %w", path, err)
	}
	if strings.HasSuffix(path, ".json") {
		return vm.UnmarshalSnapshotJSON(data)
	}
	return vm.UnmarshalSnapshotCBOR(data)
}

func dumpMemory(mem []byte) string {
	const width = 32
	var sb strings.Builder
	for i := 0; i < len(mem); i += width {
		end := i + width
		if end > len(mem) {
			end = len(mem)
		}
		fmt.Fprintf(&sb, "0x%04x:", i)
		for _, b := range mem[i:end] {
			fmt.Fprintf(&sb, " %02x", b)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func dumpCore(c vm.CoreSnapshot) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ip:        0x%08x\n", c.IP)
	fmt.Fprintf(&sb, "active:    %v\n", c.Active)
	fmt.Fprintf(&sb, "op_mode:   %s\n", c.OpMode)
	fmt.Fprintf(&sb, "addr_mode: %s\n", c.AddrMode)
	fmt.Fprintf(&sb, "\nregisters:\n")
	for i, r := range c.Regs {
		fmt.Fprintf(&sb, "  r%-3d 0x%08x\n", i, r)
	}
	fmt.Fprintf(&sb, "\ndata stack (bottom..top):\n")
	for _, v := range c.Data {
		fmt.Fprintf(&sb, "  0x%08x\n", v)
	}
	fmt.Fprintf(&sb, "\naddress stack (bottom..top):\n")
	for _, v := range c.Addrs {
		fmt.Fprintf(&sb, "  0x%08x\n", v)
	}
	return sb.String()
}

func dumpInterrupts(ints []uint32) string {
	var sb strings.Builder
	for i, addr := range ints {
		if addr == 0 {
			continue
		}
		fmt.Fprintf(&sb, "int %-3d -> 0x%08x\n", i, addr)
	}
	if sb.Len() == 0 {
		return "(no handlers registered)\n"
	}
	return sb.String()
}

func dumpIO(slots []vm.IOSlotSnapshot) string {
	var sb strings.Builder
	for _, s := range slots {
		if !s.Bound {
			continue
		}
		fmt.Fprintf(&sb, "io %-3d %s\n", s.ID, s.Description)
	}
	if sb.Len() == 0 {
		return "(no callbacks bound)\n"
	}
	return sb.String()
}

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vm-viewer <snapshot.json|snapshot.cbor>")
		os.Exit(1)
	}

	snap, err := loadSnapshot(os.Args[1])
	if err != nil {
		log.Fatalf("load snapshot: %s", err)
	}

	app := tview.NewApplication()

	coreList := tview.NewList().ShowSecondaryText(false)
	for i, c := range snap.Cores {
		label := fmt.Sprintf("core %d (active=%v ip=0x%08x)", i, c.Active, c.IP)
		coreList.AddItem(label, "", 0, nil)
	}
	coreList.SetBorder(true).SetTitle(fmt.Sprintf("cores (cur=%d, ints_enabled=%v)", snap.CurCore, snap.IntsEnabled))

	coreView := tview.NewTextView().SetDynamicColors(false)
	coreView.SetBorder(true).SetTitle("core detail")

	memView := tview.NewTextView().SetText(dumpMemory(snap.Memory))
	memView.SetBorder(true).SetTitle("memory")

	intView := tview.NewTextView().SetText(dumpInterrupts(snap.Interrupts))
	intView.SetBorder(true).SetTitle("interrupt table")

	ioView := tview.NewTextView().SetText(dumpIO(snap.IO))
	ioView.SetBorder(true).SetTitle("io table")

	coreList.SetChangedFunc(func(i int, _, _ string, _ rune) {
		if i >= 0 && i < len(snap.Cores) {
			coreView.SetText(dumpCore(snap.Cores[i]))
		}
	})
	if len(snap.Cores) > 0 {
		coreView.SetText(dumpCore(snap.Cores[0]))
	}

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(coreView, 0, 2, false).
		AddItem(intView, 0, 1, false).
		AddItem(ioView, 0, 1, false)

	top := tview.NewFlex().
		AddItem(coreList, 0, 1, true).
		AddItem(right, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 2, true).
		AddItem(memView, 0, 3, false)

	app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEsc || event.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return event
	})

	if err := app.SetRoot(root, true).SetFocus(coreList).Run(); err != nil {
		log.Fatalf("run viewer: %s", err)
	}
}
