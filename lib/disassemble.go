package lib

import (
    "bytes"
    "fmt"
)

/* Disassembly is one decoded instruction pinned to an address, with the
 * operand bytes that followed the opcode. It carries everything a formatter
 * needs: address, opcode, mnemonic, mode, operands and cycle count.
 */
type Disassembly struct {
    Address uint16
    Instruction Instruction
    Operands []byte
}

/* DisassembleAt decodes the instruction sitting at address. It never fails:
 * undefined opcodes come back as UNKNOWN and render as data bytes.
 */
func DisassembleAt(memory Memory, address uint16) Disassembly {
    instruction := Decode(memory.Read(address))

    operands := make([]byte, instruction.Length - 1)
    for i := range operands {
        operands[i] = memory.Read(address + 1 + uint16(i))
    }

    return Disassembly{
        Address: address,
        Instruction: instruction,
        Operands: operands,
    }
}

/* DisassembleProgram walks a program image from its first byte, decoding
 * instruction by instruction. base is the address the image is mapped at.
 * A multi-byte instruction truncated by the end of the image is dropped.
 */
func DisassembleProgram(program []byte, base uint16) []Disassembly {
    var out []Disassembly

    pc := 0
    for pc < len(program) {
        instruction := Decode(program[pc])
        if pc + int(instruction.Length) > len(program) {
            break
        }

        operands := make([]byte, instruction.Length - 1)
        copy(operands, program[pc + 1:])

        out = append(out, Disassembly{
            Address: base + uint16(pc),
            Instruction: instruction,
            Operands: operands,
        })

        pc += int(instruction.Length)
    }

    return out
}

func (disassembly Disassembly) operandByte() byte {
    return disassembly.Operands[0]
}

func (disassembly Disassembly) operandWord() uint16 {
    return (uint16(disassembly.Operands[1]) << 8) | uint16(disassembly.Operands[0])
}

/* OperandText renders the operand in hardware assembler syntax for the
 * instruction's addressing mode: #$NN, $NN, $NN,X, $NNNN, ($NNNN),
 * ($NN,X), ($NN),Y. Relative branches show the resolved target address.
 */
func (disassembly Disassembly) OperandText() string {
    switch disassembly.Instruction.Mode {
        case Implied, UnknownMode:
            return ""
        case Accumulator:
            return "A"
        case Immediate:
            return fmt.Sprintf("#$%02X", disassembly.operandByte())
        case ZeroPage:
            return fmt.Sprintf("$%02X", disassembly.operandByte())
        case ZeroPageX:
            return fmt.Sprintf("$%02X,X", disassembly.operandByte())
        case ZeroPageY:
            return fmt.Sprintf("$%02X,Y", disassembly.operandByte())
        case Relative:
            target := disassembly.Address + disassembly.Instruction.Length + uint16(int16(int8(disassembly.operandByte())))
            return fmt.Sprintf("$%04X", target)
        case Absolute:
            return fmt.Sprintf("$%04X", disassembly.operandWord())
        case AbsoluteX:
            return fmt.Sprintf("$%04X,X", disassembly.operandWord())
        case AbsoluteY:
            return fmt.Sprintf("$%04X,Y", disassembly.operandWord())
        case Indirect:
            return fmt.Sprintf("($%04X)", disassembly.operandWord())
        case IndexedIndirect:
            return fmt.Sprintf("($%02X,X)", disassembly.operandByte())
        case IndirectIndexed:
            return fmt.Sprintf("($%02X),Y", disassembly.operandByte())
    }
    return ""
}

/* Text is the instruction column alone: mnemonic plus operand, or a .byte
 * directive for an undefined opcode
 */
func (disassembly Disassembly) Text() string {
    if !disassembly.Instruction.Known() {
        return fmt.Sprintf(".byte $%02X", disassembly.Instruction.Opcode)
    }

    operand := disassembly.OperandText()
    if operand == "" {
        return disassembly.Instruction.Mnemonic.String()
    }
    return fmt.Sprintf("%v %v", disassembly.Instruction.Mnemonic, operand)
}

/* String renders a full listing line: address, raw bytes, instruction */
func (disassembly Disassembly) String() string {
    var raw bytes.Buffer
    raw.WriteString(fmt.Sprintf("%02X", disassembly.Instruction.Opcode))
    for _, operand := range disassembly.Operands {
        raw.WriteString(fmt.Sprintf(" %02X", operand))
    }

    return fmt.Sprintf("$%04X  %-8v  %v", disassembly.Address, raw.String(), disassembly.Text())
}
