package main

import (
    "flag"
    "fmt"
    "log"
    "os"

    "github.com/fatih/color"

    nes "github.com/romatthe/mudkip/lib"
)

func setupCPU(path string) (nes.CPUState, *nes.Bus, error) {
    nesFile, err := nes.ParseNesFile(path)
    if err != nil {
        return nes.CPUState{}, nil, err
    }

    if nesFile.Mapper != 0 {
        return nes.CPUState{}, nil, fmt.Errorf("%v: mapper %v not supported, only mapper 0 (nrom)", path, nesFile.Mapper)
    }

    bus := nes.NewBus(nesFile.ProgramRom)
    cpu := nes.StartupState(bus)
    cpu.Reset()

    return cpu, bus, nil
}

func doDisassemble(path string) error {
    nesFile, err := nes.ParseNesFile(path)
    if err != nil {
        return err
    }

    address := color.New(color.FgCyan).SprintfFunc()
    data := color.New(color.FgRed).SprintFunc()

    for _, disassembly := range nes.DisassembleProgram(nesFile.ProgramRom, 0x8000) {
        raw := fmt.Sprintf("%02X", disassembly.Instruction.Opcode)
        for _, operand := range disassembly.Operands {
            raw += fmt.Sprintf(" %02X", operand)
        }

        text := disassembly.Text()
        if !disassembly.Instruction.Known() {
            text = data(text)
        }

        fmt.Printf("%v  %-8v  %v\n", address("$%04X", disassembly.Address), raw, text)
    }

    return nil
}

func doRun(path string, steps int) error {
    cpu, _, err := setupCPU(path)
    if err != nil {
        return err
    }

    cycles := cpu.RunSteps(steps)

    fmt.Printf("%v steps, %v cycles\n", steps, cycles)
    fmt.Println(cpu.String())
    return nil
}

func doTrace(path string, steps int) error {
    cpu, bus, err := setupCPU(path)
    if err != nil {
        return err
    }

    address := color.New(color.FgCyan).SprintfFunc()
    mnemonic := color.New(color.FgGreen).SprintFunc()
    registers := color.New(color.FgYellow).SprintFunc()

    for i := 0; i < steps; i++ {
        disassembly := nes.DisassembleAt(bus, cpu.PC)
        fmt.Printf("%v  %v  %v\n",
                   address("$%04X", cpu.PC),
                   mnemonic(fmt.Sprintf("%-14v", disassembly.Text())),
                   registers(cpu.String()))
        cpu.Step()
    }

    return nil
}

func usage(){
    fmt.Printf(`mudkip: a 6502 cpu emulator for nes roms

usage:
  mudkip disasm <file.nes>            disassemble the program rom
  mudkip run [-steps n] <file.nes>    execute and print the final state
  mudkip trace [-steps n] <file.nes>  execute, printing every instruction
  mudkip debug <file.nes>             interactive single-stepping debugger
`)
}

func main(){
    log.SetFlags(log.Ldate | log.Lshortfile | log.Lmicroseconds)

    if len(os.Args) < 2 {
        usage()
        os.Exit(1)
    }

    var err error

    switch os.Args[1] {
        case "disasm":
            flags := flag.NewFlagSet("disasm", flag.ExitOnError)
            flags.Parse(os.Args[2:])
            if flags.NArg() != 1 {
                usage()
                os.Exit(1)
            }
            err = doDisassemble(flags.Arg(0))
        case "run":
            flags := flag.NewFlagSet("run", flag.ExitOnError)
            steps := flags.Int("steps", 10000, "number of instructions to execute")
            flags.Parse(os.Args[2:])
            if flags.NArg() != 1 {
                usage()
                os.Exit(1)
            }
            err = doRun(flags.Arg(0), *steps)
        case "trace":
            flags := flag.NewFlagSet("trace", flag.ExitOnError)
            steps := flags.Int("steps", 100, "number of instructions to execute")
            flags.Parse(os.Args[2:])
            if flags.NArg() != 1 {
                usage()
                os.Exit(1)
            }
            err = doTrace(flags.Arg(0), *steps)
        case "debug":
            flags := flag.NewFlagSet("debug", flag.ExitOnError)
            flags.Parse(os.Args[2:])
            if flags.NArg() != 1 {
                usage()
                os.Exit(1)
            }
            err = doDebug(flags.Arg(0))
        default:
            usage()
            os.Exit(1)
    }

    if err != nil {
        log.Fatalf("%v: %v", os.Args[1], err)
    }
}
