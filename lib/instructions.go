package lib

import "fmt"

/* opcode references
 * https://www.masswerk.at/6502/6502_instruction_set.html
 * http://www.6502.org/tutorials/6502opcodes.html
 * http://www.thealmightyguru.com/Games/Hacking/Wiki/index.php/6502_Opcodes
 */

type Mnemonic int

const (
    ADC Mnemonic = iota
    AND
    ASL
    BCC
    BCS
    BEQ
    BIT
    BMI
    BNE
    BPL
    BRK
    BVC
    BVS
    CLC
    CLD
    CLI
    CLV
    CMP
    CPX
    CPY
    DEC
    DEX
    DEY
    EOR
    INC
    INX
    INY
    JMP
    JSR
    LDA
    LDX
    LDY
    LSR
    NOP
    ORA
    PHA
    PHP
    PLA
    PLP
    ROL
    ROR
    RTI
    RTS
    SBC
    SEC
    SED
    SEI
    STA
    STX
    STY
    TAX
    TAY
    TSX
    TXA
    TXS
    TYA
    UNKNOWN
)

var mnemonicNames = [...]string{
    "ADC", "AND", "ASL", "BCC", "BCS", "BEQ", "BIT", "BMI",
    "BNE", "BPL", "BRK", "BVC", "BVS", "CLC", "CLD", "CLI",
    "CLV", "CMP", "CPX", "CPY", "DEC", "DEX", "DEY", "EOR",
    "INC", "INX", "INY", "JMP", "JSR", "LDA", "LDX", "LDY",
    "LSR", "NOP", "ORA", "PHA", "PHP", "PLA", "PLP", "ROL",
    "ROR", "RTI", "RTS", "SBC", "SEC", "SED", "SEI", "STA",
    "STX", "STY", "TAX", "TAY", "TSX", "TXA", "TXS", "TYA",
    "???",
}

func (mnemonic Mnemonic) String() string {
    if mnemonic < 0 || int(mnemonic) >= len(mnemonicNames) {
        return "???"
    }
    return mnemonicNames[mnemonic]
}

type AddressingMode int

const (
    Implied AddressingMode = iota
    Accumulator
    Immediate
    ZeroPage
    ZeroPageX
    ZeroPageY
    Relative
    Absolute
    AbsoluteX
    AbsoluteY
    Indirect
    IndexedIndirect
    IndirectIndexed
    UnknownMode
)

var addressingModeNames = [...]string{
    "implied", "accumulator", "immediate", "zeropage",
    "zeropage,x", "zeropage,y", "relative", "absolute",
    "absolute,x", "absolute,y", "indirect", "(indirect,x)",
    "(indirect),y", "unknown",
}

func (mode AddressingMode) String() string {
    if mode < 0 || int(mode) >= len(addressingModeNames) {
        return "unknown"
    }
    return addressingModeNames[mode]
}

/* how many bytes follow the opcode in the instruction stream */
func (mode AddressingMode) OperandBytes() uint16 {
    switch mode {
        case Implied, Accumulator, UnknownMode:
            return 0
        case Immediate, ZeroPage, ZeroPageX, ZeroPageY,
             Relative, IndexedIndirect, IndirectIndexed:
            return 1
        case Absolute, AbsoluteX, AbsoluteY, Indirect:
            return 2
    }
    return 0
}

/* Instruction is an immutable description of a single opcode: what it does,
 * how it finds its operand, how many bytes it occupies and the minimum
 * number of cycles it burns. Page crossing and branch penalties come on top
 * of Cycles during execution.
 */
type Instruction struct {
    Opcode byte
    Mnemonic Mnemonic
    Mode AddressingMode
    Length uint16
    Cycles uint64
}

func (instruction Instruction) Known() bool {
    return instruction.Mnemonic != UNKNOWN
}

var instructionTable [256]Instruction

func describe(opcode byte, mnemonic Mnemonic, mode AddressingMode, cycles uint64){
    instructionTable[opcode] = Instruction{
        Opcode: opcode,
        Mnemonic: mnemonic,
        Mode: mode,
        /* deriving the length from the mode keeps length and mode from
         * ever disagreeing
         */
        Length: 1 + mode.OperandBytes(),
        Cycles: cycles,
    }
}

func init(){
    /* undefined opcodes decode to a 1-byte 2-cycle nop-alike so that
     * execution over data bytes or copy-protection tricks keeps going
     */
    for i := 0; i < 256; i++ {
        instructionTable[i] = Instruction{
            Opcode: byte(i),
            Mnemonic: UNKNOWN,
            Mode: UnknownMode,
            Length: 1,
            Cycles: 2,
        }
    }

    describe(0xa9, LDA, Immediate, 2)
    describe(0xa5, LDA, ZeroPage, 3)
    describe(0xb5, LDA, ZeroPageX, 4)
    describe(0xad, LDA, Absolute, 4)
    describe(0xbd, LDA, AbsoluteX, 4)
    describe(0xb9, LDA, AbsoluteY, 4)
    describe(0xa1, LDA, IndexedIndirect, 6)
    describe(0xb1, LDA, IndirectIndexed, 5)

    describe(0xa2, LDX, Immediate, 2)
    describe(0xa6, LDX, ZeroPage, 3)
    describe(0xb6, LDX, ZeroPageY, 4)
    describe(0xae, LDX, Absolute, 4)
    describe(0xbe, LDX, AbsoluteY, 4)

    describe(0xa0, LDY, Immediate, 2)
    describe(0xa4, LDY, ZeroPage, 3)
    describe(0xb4, LDY, ZeroPageX, 4)
    describe(0xac, LDY, Absolute, 4)
    describe(0xbc, LDY, AbsoluteX, 4)

    describe(0x85, STA, ZeroPage, 3)
    describe(0x95, STA, ZeroPageX, 4)
    describe(0x8d, STA, Absolute, 4)
    describe(0x9d, STA, AbsoluteX, 5)
    describe(0x99, STA, AbsoluteY, 5)
    describe(0x81, STA, IndexedIndirect, 6)
    describe(0x91, STA, IndirectIndexed, 6)

    describe(0x86, STX, ZeroPage, 3)
    describe(0x96, STX, ZeroPageY, 4)
    describe(0x8e, STX, Absolute, 4)

    describe(0x84, STY, ZeroPage, 3)
    describe(0x94, STY, ZeroPageX, 4)
    describe(0x8c, STY, Absolute, 4)

    describe(0xaa, TAX, Implied, 2)
    describe(0xa8, TAY, Implied, 2)
    describe(0xba, TSX, Implied, 2)
    describe(0x8a, TXA, Implied, 2)
    describe(0x9a, TXS, Implied, 2)
    describe(0x98, TYA, Implied, 2)

    describe(0x69, ADC, Immediate, 2)
    describe(0x65, ADC, ZeroPage, 3)
    describe(0x75, ADC, ZeroPageX, 4)
    describe(0x6d, ADC, Absolute, 4)
    describe(0x7d, ADC, AbsoluteX, 4)
    describe(0x79, ADC, AbsoluteY, 4)
    describe(0x61, ADC, IndexedIndirect, 6)
    describe(0x71, ADC, IndirectIndexed, 5)

    describe(0xe9, SBC, Immediate, 2)
    describe(0xe5, SBC, ZeroPage, 3)
    describe(0xf5, SBC, ZeroPageX, 4)
    describe(0xed, SBC, Absolute, 4)
    describe(0xfd, SBC, AbsoluteX, 4)
    describe(0xf9, SBC, AbsoluteY, 4)
    describe(0xe1, SBC, IndexedIndirect, 6)
    describe(0xf1, SBC, IndirectIndexed, 5)

    describe(0xe6, INC, ZeroPage, 5)
    describe(0xf6, INC, ZeroPageX, 6)
    describe(0xee, INC, Absolute, 6)
    describe(0xfe, INC, AbsoluteX, 7)

    describe(0xc6, DEC, ZeroPage, 5)
    describe(0xd6, DEC, ZeroPageX, 6)
    describe(0xce, DEC, Absolute, 6)
    describe(0xde, DEC, AbsoluteX, 7)

    describe(0xe8, INX, Implied, 2)
    describe(0xc8, INY, Implied, 2)
    describe(0xca, DEX, Implied, 2)
    describe(0x88, DEY, Implied, 2)

    describe(0x29, AND, Immediate, 2)
    describe(0x25, AND, ZeroPage, 3)
    describe(0x35, AND, ZeroPageX, 4)
    describe(0x2d, AND, Absolute, 4)
    describe(0x3d, AND, AbsoluteX, 4)
    describe(0x39, AND, AbsoluteY, 4)
    describe(0x21, AND, IndexedIndirect, 6)
    describe(0x31, AND, IndirectIndexed, 5)

    describe(0x09, ORA, Immediate, 2)
    describe(0x05, ORA, ZeroPage, 3)
    describe(0x15, ORA, ZeroPageX, 4)
    describe(0x0d, ORA, Absolute, 4)
    describe(0x1d, ORA, AbsoluteX, 4)
    describe(0x19, ORA, AbsoluteY, 4)
    describe(0x01, ORA, IndexedIndirect, 6)
    describe(0x11, ORA, IndirectIndexed, 5)

    describe(0x49, EOR, Immediate, 2)
    describe(0x45, EOR, ZeroPage, 3)
    describe(0x55, EOR, ZeroPageX, 4)
    describe(0x4d, EOR, Absolute, 4)
    describe(0x5d, EOR, AbsoluteX, 4)
    describe(0x59, EOR, AbsoluteY, 4)
    describe(0x41, EOR, IndexedIndirect, 6)
    describe(0x51, EOR, IndirectIndexed, 5)

    describe(0x24, BIT, ZeroPage, 3)
    describe(0x2c, BIT, Absolute, 4)

    describe(0x0a, ASL, Accumulator, 2)
    describe(0x06, ASL, ZeroPage, 5)
    describe(0x16, ASL, ZeroPageX, 6)
    describe(0x0e, ASL, Absolute, 6)
    describe(0x1e, ASL, AbsoluteX, 7)

    describe(0x4a, LSR, Accumulator, 2)
    describe(0x46, LSR, ZeroPage, 5)
    describe(0x56, LSR, ZeroPageX, 6)
    describe(0x4e, LSR, Absolute, 6)
    describe(0x5e, LSR, AbsoluteX, 7)

    describe(0x2a, ROL, Accumulator, 2)
    describe(0x26, ROL, ZeroPage, 5)
    describe(0x36, ROL, ZeroPageX, 6)
    describe(0x2e, ROL, Absolute, 6)
    describe(0x3e, ROL, AbsoluteX, 7)

    describe(0x6a, ROR, Accumulator, 2)
    describe(0x66, ROR, ZeroPage, 5)
    describe(0x76, ROR, ZeroPageX, 6)
    describe(0x6e, ROR, Absolute, 6)
    describe(0x7e, ROR, AbsoluteX, 7)

    describe(0xc9, CMP, Immediate, 2)
    describe(0xc5, CMP, ZeroPage, 3)
    describe(0xd5, CMP, ZeroPageX, 4)
    describe(0xcd, CMP, Absolute, 4)
    describe(0xdd, CMP, AbsoluteX, 4)
    describe(0xd9, CMP, AbsoluteY, 4)
    describe(0xc1, CMP, IndexedIndirect, 6)
    describe(0xd1, CMP, IndirectIndexed, 5)

    describe(0xe0, CPX, Immediate, 2)
    describe(0xe4, CPX, ZeroPage, 3)
    describe(0xec, CPX, Absolute, 4)

    describe(0xc0, CPY, Immediate, 2)
    describe(0xc4, CPY, ZeroPage, 3)
    describe(0xcc, CPY, Absolute, 4)

    describe(0x10, BPL, Relative, 2)
    describe(0x30, BMI, Relative, 2)
    describe(0x50, BVC, Relative, 2)
    describe(0x70, BVS, Relative, 2)
    describe(0x90, BCC, Relative, 2)
    describe(0xb0, BCS, Relative, 2)
    describe(0xd0, BNE, Relative, 2)
    describe(0xf0, BEQ, Relative, 2)

    describe(0x4c, JMP, Absolute, 3)
    describe(0x6c, JMP, Indirect, 5)
    describe(0x20, JSR, Absolute, 6)
    describe(0x60, RTS, Implied, 6)
    describe(0x40, RTI, Implied, 6)
    describe(0x00, BRK, Implied, 7)

    describe(0x48, PHA, Implied, 3)
    describe(0x08, PHP, Implied, 3)
    describe(0x68, PLA, Implied, 4)
    describe(0x28, PLP, Implied, 4)

    describe(0x18, CLC, Implied, 2)
    describe(0xd8, CLD, Implied, 2)
    describe(0x58, CLI, Implied, 2)
    describe(0xb8, CLV, Implied, 2)
    describe(0x38, SEC, Implied, 2)
    describe(0xf8, SED, Implied, 2)
    describe(0x78, SEI, Implied, 2)

    describe(0xea, NOP, Implied, 2)

    MustValidateTable()
}

/* Decode maps any byte value to an instruction descriptor. It is total:
 * undefined opcodes come back as UNKNOWN rather than an error, since real
 * ROM images routinely run the program counter over data bytes.
 */
func Decode(opcode byte) Instruction {
    return instructionTable[opcode]
}

/* MustValidateTable checks the structural invariant that every entry's
 * length equals 1 + the operand bytes of its addressing mode. A violation
 * is a programming error in the table itself, so this panics. It runs once
 * at package init, never per instruction.
 */
func MustValidateTable(){
    for _, instruction := range instructionTable {
        if instruction.Length != 1 + instruction.Mode.OperandBytes() {
            panic(fmt.Sprintf("instruction table corrupt: opcode 0x%02x %v declares length %v but mode %v consumes %v operand bytes",
                              instruction.Opcode, instruction.Mnemonic, instruction.Length,
                              instruction.Mode, instruction.Mode.OperandBytes()))
        }
        if instruction.Mnemonic == UNKNOWN && instruction.Cycles != 2 {
            panic(fmt.Sprintf("instruction table corrupt: undefined opcode 0x%02x must cost 2 cycles", instruction.Opcode))
        }
    }
}
