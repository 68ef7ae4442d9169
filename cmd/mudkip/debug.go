package main

import (
    "fmt"

    "github.com/jroimartin/gocui"

    nes "github.com/romatthe/mudkip/lib"
)

/* debugger is an interactive single-stepping view of the cpu: a listing
 * pane around the program counter next to a register pane. space steps,
 * r resets, q quits.
 */
type debugger struct {
    cpu nes.CPUState
    bus *nes.Bus
}

const listingView = "listing"
const registersView = "registers"
const helpView = "help"

func (debug *debugger) layout(gui *gocui.Gui) error {
    width, height := gui.Size()

    listing, err := gui.SetView(listingView, 0, 0, width * 2 / 3, height - 4)
    if err != nil && err != gocui.ErrUnknownView {
        return err
    }
    listing.Title = "disassembly"

    registers, err := gui.SetView(registersView, width * 2 / 3 + 1, 0, width - 1, height - 4)
    if err != nil && err != gocui.ErrUnknownView {
        return err
    }
    registers.Title = "cpu"

    help, err := gui.SetView(helpView, 0, height - 3, width - 1, height - 1)
    if err != nil && err != gocui.ErrUnknownView {
        return err
    }
    help.Frame = false

    debug.render(gui)
    return nil
}

func (debug *debugger) render(gui *gocui.Gui) {
    listing, err := gui.View(listingView)
    if err != nil {
        return
    }

    listing.Clear()
    _, height := listing.Size()

    /* walk forward from the program counter. instructions are variable
     * length, so a backwards window is guesswork and not worth it.
     */
    address := debug.cpu.PC
    for i := 0; i < height; i++ {
        disassembly := nes.DisassembleAt(debug.bus, address)

        marker := "  "
        if address == debug.cpu.PC {
            marker = "> "
        }

        fmt.Fprintf(listing, "%v%v\n", marker, disassembly.String())
        address += disassembly.Instruction.Length
    }

    registers, err := gui.View(registersView)
    if err != nil {
        return
    }

    registers.Clear()
    cpu := &debug.cpu
    fmt.Fprintf(registers, "PC  $%04X\n", cpu.PC)
    fmt.Fprintf(registers, "A   $%02X\n", cpu.A)
    fmt.Fprintf(registers, "X   $%02X\n", cpu.X)
    fmt.Fprintf(registers, "Y   $%02X\n", cpu.Y)
    fmt.Fprintf(registers, "SP  $%02X\n", cpu.SP)
    fmt.Fprintf(registers, "P   $%02X %v\n", cpu.Status, statusText(cpu))
    fmt.Fprintf(registers, "\ncycle %v\n", cpu.Cycle)

    help, err := gui.View(helpView)
    if err != nil {
        return
    }

    help.Clear()
    fmt.Fprintf(help, " space: step   r: reset   q: quit")
}

func statusText(cpu *nes.CPUState) string {
    flags := []struct{
        name string
        set bool
    }{
        {"N", cpu.GetNegativeFlag()},
        {"V", cpu.GetOverflowFlag()},
        {"D", cpu.GetDecimalFlag()},
        {"I", cpu.GetInterruptDisableFlag()},
        {"Z", cpu.GetZeroFlag()},
        {"C", cpu.GetCarryFlag()},
    }

    out := ""
    for _, flag := range flags {
        if flag.set {
            out += flag.name
        } else {
            out += "."
        }
    }
    return out
}

func (debug *debugger) step(gui *gocui.Gui, view *gocui.View) error {
    debug.cpu.Step()
    debug.render(gui)
    return nil
}

func (debug *debugger) reset(gui *gocui.Gui, view *gocui.View) error {
    debug.cpu.Reset()
    debug.render(gui)
    return nil
}

func quit(gui *gocui.Gui, view *gocui.View) error {
    return gocui.ErrQuit
}

func doDebug(path string) error {
    cpu, bus, err := setupCPU(path)
    if err != nil {
        return err
    }

    debug := debugger{cpu: cpu, bus: bus}

    gui, err := gocui.NewGui(gocui.OutputNormal)
    if err != nil {
        return err
    }
    defer gui.Close()

    gui.SetManagerFunc(debug.layout)

    err = gui.SetKeybinding("", gocui.KeySpace, gocui.ModNone, debug.step)
    if err != nil {
        return err
    }

    err = gui.SetKeybinding("", 'r', gocui.ModNone, debug.reset)
    if err != nil {
        return err
    }

    err = gui.SetKeybinding("", 'q', gocui.ModNone, quit)
    if err != nil {
        return err
    }

    err = gui.SetKeybinding("", gocui.KeyCtrlC, gocui.ModNone, quit)
    if err != nil {
        return err
    }

    err = gui.MainLoop()
    if err != nil && err != gocui.ErrQuit {
        return err
    }
    return nil
}
