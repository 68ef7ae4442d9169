package lib

import (
    "fmt"
)

/* cpu references
 * http://wiki.nesdev.com/w/index.php/CPU_registers
 * http://wiki.nesdev.com/w/index.php/CPU_status_flag_behavior
 * http://wiki.nesdev.com/w/index.php/CPU_power_up_state
 * http://www.6502.org/tutorials/vflag.html
 */

const NMIVector uint16 = 0xfffa
const ResetVector uint16 = 0xfffc
/* brk shares the irq vector on real hardware */
const IRQVector uint16 = 0xfffe

/* http://wiki.nesdev.com/w/index.php/Cycle_reference_chart#Clock_rates
 * NTSC 2a03 clock speed is 21.47~ MHz / 12 = 1.789773 MHz
 */
const CPUSpeed float64 = 1.789773e6

/* the stack lives in page 1, indexed by the 8-bit stack pointer */
const StackBase uint16 = 0x100

/* status register bits 4 and 5 only materialize on the stack.
 * PHP/BRK push both set, IRQ/NMI push bit 5 set and bit 4 clear,
 * PLP/RTI ignore both on the way back in.
 */
const statusBreakBit byte = 1 << 4
const statusReservedBit byte = 1 << 5

/* Memory is the capability the cpu needs from the outside world. A bus
 * implementation decides about mirroring, mapped registers and bank
 * switching; the cpu itself never does.
 */
type Memory interface {
    Read(address uint16) byte
    Write(address uint16, value byte)
}

type CPUState struct {
    A byte
    X byte
    Y byte
    SP byte
    PC uint16
    Status byte

    Cycle uint64

    Memory Memory

    /* interrupt requests latched here are consumed at the next step
     * boundary, never mid-instruction
     */
    nmiPending bool
    irqPending bool
}

/* http://wiki.nesdev.com/w/index.php/CPU_power_up_state
 * PC deliberately points at the reset vector location itself; call Reset
 * to fetch the entry point through it.
 */
func StartupState(memory Memory) CPUState {
    return CPUState{
        A: 0,
        X: 0,
        Y: 0,
        SP: 0xfd,
        PC: ResetVector,
        Status: 0x24,
        Memory: memory,
    }
}

func (cpu *CPUState) String() string {
    return fmt.Sprintf("A:%02X X:%02X Y:%02X P:%02X SP:%02X PC:%04X CYC:%v",
                       cpu.A, cpu.X, cpu.Y, cpu.Status, cpu.SP, cpu.PC, cpu.Cycle)
}

func (cpu *CPUState) LoadMemory(address uint16) byte {
    return cpu.Memory.Read(address)
}

func (cpu *CPUState) StoreMemory(address uint16, value byte){
    cpu.Memory.Write(address, value)
}

func (cpu *CPUState) PushStack(value byte){
    cpu.StoreMemory(StackBase + uint16(cpu.SP), value)
    /* the stack pointer wraps within page 1, matching hardware */
    cpu.SP -= 1
}

func (cpu *CPUState) PopStack() byte {
    cpu.SP += 1
    return cpu.LoadMemory(StackBase + uint16(cpu.SP))
}

func (cpu *CPUState) pushWord(value uint16){
    cpu.PushStack(byte(value >> 8))
    cpu.PushStack(byte(value))
}

func (cpu *CPUState) popWord() uint16 {
    low := uint16(cpu.PopStack())
    high := uint16(cpu.PopStack())
    return (high << 8) | low
}

/* status flag accessors */

func (cpu *CPUState) setBit(bit byte, set bool){
    if set {
        cpu.Status = cpu.Status | bit
    } else {
        cpu.Status = cpu.Status & (^bit)
    }
}

func (cpu *CPUState) getBit(bit byte) bool {
    return (cpu.Status & bit) == bit
}

func (cpu *CPUState) GetCarryFlag() bool {
    return cpu.getBit(1 << 0)
}

func (cpu *CPUState) SetCarryFlag(set bool){
    cpu.setBit(1 << 0, set)
}

func (cpu *CPUState) GetZeroFlag() bool {
    return cpu.getBit(1 << 1)
}

func (cpu *CPUState) SetZeroFlag(set bool){
    cpu.setBit(1 << 1, set)
}

func (cpu *CPUState) GetInterruptDisableFlag() bool {
    return cpu.getBit(1 << 2)
}

func (cpu *CPUState) SetInterruptDisableFlag(set bool){
    cpu.setBit(1 << 2, set)
}

func (cpu *CPUState) GetDecimalFlag() bool {
    return cpu.getBit(1 << 3)
}

func (cpu *CPUState) SetDecimalFlag(set bool){
    cpu.setBit(1 << 3, set)
}

func (cpu *CPUState) GetOverflowFlag() bool {
    return cpu.getBit(1 << 6)
}

func (cpu *CPUState) SetOverflowFlag(set bool){
    cpu.setBit(1 << 6, set)
}

func (cpu *CPUState) GetNegativeFlag() bool {
    return cpu.getBit(1 << 7)
}

func (cpu *CPUState) SetNegativeFlag(set bool){
    cpu.setBit(1 << 7, set)
}

/* addressing resolution */

type OperandKind int

const (
    OperandNone OperandKind = iota
    OperandAccumulator
    OperandImmediate
    OperandAddress
)

/* Operand is the resolved target of one instruction: a memory address, the
 * accumulator, an immediate byte or nothing at all. PageCross records
 * whether indexing stepped over a 256-byte page, which costs read
 * instructions an extra cycle.
 */
type Operand struct {
    Kind OperandKind
    Address uint16
    Immediate byte
    PageCross bool
}

func (cpu *CPUState) fetchByte() byte {
    value := cpu.LoadMemory(cpu.PC)
    cpu.PC += 1
    return value
}

func (cpu *CPUState) fetchWord() uint16 {
    low := uint16(cpu.fetchByte())
    high := uint16(cpu.fetchByte())
    return (high << 8) | low
}

func pageCross(a uint16, b uint16) bool {
    return (a >> 8) != (b >> 8)
}

func (cpu *CPUState) readVector(vector uint16) uint16 {
    low := uint16(cpu.LoadMemory(vector))
    high := uint16(cpu.LoadMemory(vector + 1))
    return (high << 8) | low
}

/* resolve consumes the operand bytes for the given mode, advancing PC past
 * them, and computes the effective operand. Zero-page indirect modes read
 * memory here, during resolution.
 */
func (cpu *CPUState) resolve(mode AddressingMode) Operand {
    switch mode {
        case Implied, UnknownMode:
            return Operand{Kind: OperandNone}
        case Accumulator:
            return Operand{Kind: OperandAccumulator}
        case Immediate:
            return Operand{Kind: OperandImmediate, Immediate: cpu.fetchByte()}
        case ZeroPage:
            return Operand{Kind: OperandAddress, Address: uint16(cpu.fetchByte())}
        case ZeroPageX:
            /* the add wraps within the zero page */
            return Operand{Kind: OperandAddress, Address: uint16(cpu.fetchByte() + cpu.X)}
        case ZeroPageY:
            return Operand{Kind: OperandAddress, Address: uint16(cpu.fetchByte() + cpu.Y)}
        case Absolute:
            return Operand{Kind: OperandAddress, Address: cpu.fetchWord()}
        case AbsoluteX:
            base := cpu.fetchWord()
            address := base + uint16(cpu.X)
            return Operand{Kind: OperandAddress, Address: address, PageCross: pageCross(base, address)}
        case AbsoluteY:
            base := cpu.fetchWord()
            address := base + uint16(cpu.Y)
            return Operand{Kind: OperandAddress, Address: address, PageCross: pageCross(base, address)}
        case Indirect:
            /* jmp only. reproduces the hardware bug: a pointer at $xxff
             * fetches its high byte from $xx00 instead of $(xx+1)00
             */
            pointer := cpu.fetchWord()
            low := uint16(cpu.LoadMemory(pointer))
            var high uint16
            if pointer & 0xff == 0xff {
                high = uint16(cpu.LoadMemory(pointer & 0xff00))
            } else {
                high = uint16(cpu.LoadMemory(pointer + 1))
            }
            return Operand{Kind: OperandAddress, Address: (high << 8) | low}
        case IndexedIndirect:
            /* ($zp,x): add x to the zero page address, then dereference.
             * both the add and the pointer's second byte wrap in page zero.
             */
            zero := cpu.fetchByte() + cpu.X
            low := uint16(cpu.LoadMemory(uint16(zero)))
            high := uint16(cpu.LoadMemory(uint16(zero + 1)))
            return Operand{Kind: OperandAddress, Address: (high << 8) | low}
        case IndirectIndexed:
            /* ($zp),y: dereference the zero page pointer, then add y */
            zero := cpu.fetchByte()
            low := uint16(cpu.LoadMemory(uint16(zero)))
            high := uint16(cpu.LoadMemory(uint16(zero + 1)))
            base := (high << 8) | low
            address := base + uint16(cpu.Y)
            return Operand{Kind: OperandAddress, Address: address, PageCross: pageCross(base, address)}
        case Relative:
            /* the offset applies after the branch's own bytes are consumed,
             * so PC already points at the next instruction here
             */
            offset := int8(cpu.fetchByte())
            target := uint16(int32(cpu.PC) + int32(offset))
            return Operand{Kind: OperandAddress, Address: target, PageCross: pageCross(cpu.PC, target)}
    }
    panic(fmt.Sprintf("unhandled addressing mode %v", mode))
}

func (cpu *CPUState) operandValue(operand Operand) byte {
    switch operand.Kind {
        case OperandAccumulator:
            return cpu.A
        case OperandImmediate:
            return operand.Immediate
        case OperandAddress:
            return cpu.LoadMemory(operand.Address)
    }
    panic("reading an operand the instruction does not have")
}

func (cpu *CPUState) operandWrite(operand Operand, value byte){
    switch operand.Kind {
        case OperandAccumulator:
            cpu.A = value
            return
        case OperandAddress:
            cpu.StoreMemory(operand.Address, value)
            return
        case OperandImmediate:
            /* no documented instruction writes back through an immediate;
             * reaching this is a table bug, not a runtime condition
             */
            panic("write through an immediate operand")
    }
    panic("writing an operand the instruction does not have")
}

/* alu helpers. each sets the flags its operation class defines */

func (cpu *CPUState) loadA(value byte){
    cpu.A = value
    cpu.SetNegativeFlag(int8(value) < 0)
    cpu.SetZeroFlag(value == 0)
}

func (cpu *CPUState) loadX(value byte){
    cpu.X = value
    cpu.SetNegativeFlag(int8(value) < 0)
    cpu.SetZeroFlag(value == 0)
}

func (cpu *CPUState) loadY(value byte){
    cpu.Y = value
    cpu.SetNegativeFlag(int8(value) < 0)
    cpu.SetZeroFlag(value == 0)
}

func (cpu *CPUState) doAnd(value byte){
    cpu.loadA(cpu.A & value)
}

func (cpu *CPUState) doOrA(value byte){
    cpu.loadA(cpu.A | value)
}

func (cpu *CPUState) doEorA(value byte){
    cpu.loadA(cpu.A ^ value)
}

/* bit probes memory without storing anything: zero comes from A & value,
 * but negative and overflow mirror bits 7 and 6 of the operand itself,
 * not of the and result
 */
func (cpu *CPUState) doBit(value byte){
    cpu.SetZeroFlag((cpu.A & value) == 0)
    cpu.SetNegativeFlag((value & (1 << 7)) != 0)
    cpu.SetOverflowFlag((value & (1 << 6)) != 0)
}

func (cpu *CPUState) doInc(value byte) byte {
    value = value + 1
    cpu.SetNegativeFlag(int8(value) < 0)
    cpu.SetZeroFlag(value == 0)
    return value
}

func (cpu *CPUState) doDec(value byte) byte {
    value = value - 1
    cpu.SetNegativeFlag(int8(value) < 0)
    cpu.SetZeroFlag(value == 0)
    return value
}

func (cpu *CPUState) doAsl(value byte) byte {
    out := value << 1
    cpu.SetCarryFlag((value & (1 << 7)) != 0)
    cpu.SetNegativeFlag(int8(out) < 0)
    cpu.SetZeroFlag(out == 0)
    return out
}

func (cpu *CPUState) doLsr(value byte) byte {
    out := value >> 1
    cpu.SetCarryFlag((value & 1) != 0)
    cpu.SetNegativeFlag(false)
    cpu.SetZeroFlag(out == 0)
    return out
}

func (cpu *CPUState) doRol(value byte) byte {
    var carryBit byte
    if cpu.GetCarryFlag() {
        carryBit = 1
    }

    out := (value << 1) | carryBit
    cpu.SetCarryFlag((value & (1 << 7)) != 0)
    cpu.SetNegativeFlag(int8(out) < 0)
    cpu.SetZeroFlag(out == 0)
    return out
}

func (cpu *CPUState) doRor(value byte) byte {
    var carryBit byte
    if cpu.GetCarryFlag() {
        carryBit = 1
    }

    out := (value >> 1) | (carryBit << 7)
    cpu.SetCarryFlag((value & 1) != 0)
    cpu.SetNegativeFlag(int8(out) < 0)
    cpu.SetZeroFlag(out == 0)
    return out
}

/* add with carry. the decimal flag is stored faithfully but ignored here:
 * the NES 2a03 leaves out the BCD correction circuit, so ADC/SBC are
 * always binary on this target.
 */
func (cpu *CPUState) doAdc(value byte){
    var carryBit byte
    if cpu.GetCarryFlag() {
        carryBit = 1
    }

    /* overflow is set when the result does not fit a twos-complement byte
     * http://www.6502.org/tutorials/vflag.html
     */
    full := int16(int8(cpu.A)) + int16(int8(value)) + int16(carryBit)
    carry := int16(cpu.A) + int16(value) + int16(carryBit) > 0xff

    cpu.A = cpu.A + value + carryBit
    cpu.SetCarryFlag(carry)
    cpu.SetOverflowFlag(full > 127 || full < -128)
    cpu.SetNegativeFlag(int8(cpu.A) < 0)
    cpu.SetZeroFlag(cpu.A == 0)
}

/* subtract with borrow, which is the inverted carry */
func (cpu *CPUState) doSbc(value byte){
    var borrow byte
    if !cpu.GetCarryFlag() {
        borrow = 1
    }

    full := int16(int8(cpu.A)) - int16(int8(value)) - int16(borrow)
    carry := int16(cpu.A) - int16(value) - int16(borrow) >= 0

    cpu.A = cpu.A - value - borrow
    cpu.SetCarryFlag(carry)
    cpu.SetOverflowFlag(full > 127 || full < -128)
    cpu.SetNegativeFlag(int8(cpu.A) < 0)
    cpu.SetZeroFlag(cpu.A == 0)
}

func (cpu *CPUState) compare(register byte, value byte){
    cpu.SetCarryFlag(register >= value)
    cpu.SetZeroFlag(register == value)
    cpu.SetNegativeFlag(int8(register - value) < 0)
}

func (cpu *CPUState) doCmp(value byte){
    cpu.compare(cpu.A, value)
}

func (cpu *CPUState) doCpx(value byte){
    cpu.compare(cpu.X, value)
}

func (cpu *CPUState) doCpy(value byte){
    cpu.compare(cpu.Y, value)
}

/* read-modify-write through the resolved operand */
func (cpu *CPUState) modify(operand Operand, change func(byte) byte){
    cpu.operandWrite(operand, change(cpu.operandValue(operand)))
}

/* extra cycle for reads whose indexing crossed a page. write and
 * read-modify-write instructions always pay it, so their table entries
 * already include it.
 */
func crossPenalty(operand Operand) uint64 {
    if operand.PageCross {
        return 1
    }
    return 0
}

/* branch: +1 cycle when taken, +1 more when the target is on a
 * different page than the instruction that follows the branch
 */
func (cpu *CPUState) doBranch(taken bool, operand Operand) uint64 {
    if !taken {
        return 0
    }

    extra := uint64(1)
    if operand.PageCross {
        extra += 1
    }
    cpu.PC = operand.Address
    return extra
}

/* Execute applies one decoded instruction to its resolved operand and
 * returns the cycles it consumed, including page-cross and branch
 * penalties. 6502 math never fails at runtime: everything wraps.
 */
func (cpu *CPUState) Execute(instruction Instruction, operand Operand) uint64 {
    cycles := instruction.Cycles

    switch instruction.Mnemonic {
        /* loads, stores, transfers */
        case LDA:
            cpu.loadA(cpu.operandValue(operand))
            cycles += crossPenalty(operand)
        case LDX:
            cpu.loadX(cpu.operandValue(operand))
            cycles += crossPenalty(operand)
        case LDY:
            cpu.loadY(cpu.operandValue(operand))
            cycles += crossPenalty(operand)
        case STA:
            cpu.operandWrite(operand, cpu.A)
        case STX:
            cpu.operandWrite(operand, cpu.X)
        case STY:
            cpu.operandWrite(operand, cpu.Y)
        case TAX:
            cpu.loadX(cpu.A)
        case TAY:
            cpu.loadY(cpu.A)
        case TSX:
            cpu.loadX(cpu.SP)
        case TXA:
            cpu.loadA(cpu.X)
        case TXS:
            /* the one transfer that touches no flags */
            cpu.SP = cpu.X
        case TYA:
            cpu.loadA(cpu.Y)

        /* arithmetic */
        case ADC:
            cpu.doAdc(cpu.operandValue(operand))
            cycles += crossPenalty(operand)
        case SBC:
            cpu.doSbc(cpu.operandValue(operand))
            cycles += crossPenalty(operand)

        /* increment, decrement, shifts, rotates */
        case INC:
            cpu.modify(operand, cpu.doInc)
        case DEC:
            cpu.modify(operand, cpu.doDec)
        case INX:
            cpu.loadX(cpu.X + 1)
        case INY:
            cpu.loadY(cpu.Y + 1)
        case DEX:
            cpu.loadX(cpu.X - 1)
        case DEY:
            cpu.loadY(cpu.Y - 1)
        case ASL:
            cpu.modify(operand, cpu.doAsl)
        case LSR:
            cpu.modify(operand, cpu.doLsr)
        case ROL:
            cpu.modify(operand, cpu.doRol)
        case ROR:
            cpu.modify(operand, cpu.doRor)

        /* bitwise */
        case AND:
            cpu.doAnd(cpu.operandValue(operand))
            cycles += crossPenalty(operand)
        case ORA:
            cpu.doOrA(cpu.operandValue(operand))
            cycles += crossPenalty(operand)
        case EOR:
            cpu.doEorA(cpu.operandValue(operand))
            cycles += crossPenalty(operand)
        case BIT:
            cpu.doBit(cpu.operandValue(operand))

        /* compares */
        case CMP:
            cpu.doCmp(cpu.operandValue(operand))
            cycles += crossPenalty(operand)
        case CPX:
            cpu.doCpx(cpu.operandValue(operand))
        case CPY:
            cpu.doCpy(cpu.operandValue(operand))

        /* branches */
        case BCC:
            cycles += cpu.doBranch(!cpu.GetCarryFlag(), operand)
        case BCS:
            cycles += cpu.doBranch(cpu.GetCarryFlag(), operand)
        case BEQ:
            cycles += cpu.doBranch(cpu.GetZeroFlag(), operand)
        case BMI:
            cycles += cpu.doBranch(cpu.GetNegativeFlag(), operand)
        case BNE:
            cycles += cpu.doBranch(!cpu.GetZeroFlag(), operand)
        case BPL:
            cycles += cpu.doBranch(!cpu.GetNegativeFlag(), operand)
        case BVC:
            cycles += cpu.doBranch(!cpu.GetOverflowFlag(), operand)
        case BVS:
            cycles += cpu.doBranch(cpu.GetOverflowFlag(), operand)

        /* jumps, calls, interrupt returns */
        case JMP:
            cpu.PC = operand.Address
        case JSR:
            /* push the address of the last byte of this instruction;
             * rts adds the 1 back
             */
            cpu.pushWord(cpu.PC - 1)
            cpu.PC = operand.Address
        case RTS:
            cpu.PC = cpu.popWord() + 1
        case RTI:
            cpu.Status = (cpu.PopStack() &^ statusBreakBit) | statusReservedBit
            cpu.PC = cpu.popWord()
        case BRK:
            /* brk pushes the address past its padding byte, with the break
             * bit set in the pushed status, then takes the irq vector
             */
            cpu.PC += 1
            cpu.pushWord(cpu.PC)
            cpu.PushStack(cpu.Status | statusBreakBit | statusReservedBit)
            cpu.SetInterruptDisableFlag(true)
            cpu.PC = cpu.readVector(IRQVector)

        /* stack */
        case PHA:
            cpu.PushStack(cpu.A)
        case PHP:
            cpu.PushStack(cpu.Status | statusBreakBit | statusReservedBit)
        case PLA:
            cpu.loadA(cpu.PopStack())
        case PLP:
            cpu.Status = (cpu.PopStack() &^ statusBreakBit) | statusReservedBit

        /* flag set/clear */
        case CLC:
            cpu.SetCarryFlag(false)
        case CLD:
            cpu.SetDecimalFlag(false)
        case CLI:
            cpu.SetInterruptDisableFlag(false)
        case CLV:
            cpu.SetOverflowFlag(false)
        case SEC:
            cpu.SetCarryFlag(true)
        case SED:
            cpu.SetDecimalFlag(true)
        case SEI:
            cpu.SetInterruptDisableFlag(true)

        case NOP, UNKNOWN:
            /* undefined opcodes behave like a 1-byte nop with the illegal
             * opcode cycle cost; the pc already moved past the opcode so
             * execution cannot wedge on malformed code
             */
    }

    cpu.Cycle += cycles
    return cycles
}

/* SignalNMI latches a non-maskable interrupt request. It is serviced at the
 * next step boundary regardless of the interrupt disable flag.
 */
func (cpu *CPUState) SignalNMI(){
    cpu.nmiPending = true
}

/* SignalIRQ latches a maskable interrupt request. It is serviced at the
 * next step boundary at which the interrupt disable flag is clear.
 */
func (cpu *CPUState) SignalIRQ(){
    cpu.irqPending = true
}

func (cpu *CPUState) interrupt(vector uint16){
    cpu.pushWord(cpu.PC)
    /* hardware interrupts push with the break bit clear */
    cpu.PushStack((cpu.Status &^ statusBreakBit) | statusReservedBit)
    cpu.SetInterruptDisableFlag(true)
    cpu.PC = cpu.readVector(vector)
    cpu.Cycle += 7
}

/* NMI jumps through the nmi vector */
func (cpu *CPUState) NMI(){
    cpu.interrupt(NMIVector)
}

/* Interrupt services a maskable irq through the irq vector */
func (cpu *CPUState) Interrupt(){
    cpu.interrupt(IRQVector)
}

/* Reset puts the cpu in the post-reset state: registers survive, the stack
 * pointer drops by 3 without anything being pushed, interrupts are disabled
 * and execution restarts at the reset vector.
 */
func (cpu *CPUState) Reset(){
    cpu.SP -= 3
    cpu.SetInterruptDisableFlag(true)
    cpu.PC = cpu.readVector(ResetVector)
    cpu.Cycle += 7
}

/* Step runs one atomic decode-resolve-execute sequence and returns the
 * cycles it consumed. A pending interrupt is serviced as its own 7-cycle
 * step. The caller owns timing, interrupt injection and stopping; no
 * instruction halts the 6502.
 */
func (cpu *CPUState) Step() uint64 {
    if cpu.nmiPending {
        cpu.nmiPending = false
        cpu.NMI()
        return 7
    }
    if cpu.irqPending && !cpu.GetInterruptDisableFlag() {
        cpu.irqPending = false
        cpu.Interrupt()
        return 7
    }

    opcode := cpu.fetchByte()
    instruction := Decode(opcode)
    operand := cpu.resolve(instruction.Mode)
    return cpu.Execute(instruction, operand)
}

/* RunSteps steps the cpu count times and reports total cycles consumed.
 * Detecting infinite loops in malformed programs is the caller's business,
 * via a step budget like this one or a wall clock around it.
 */
func (cpu *CPUState) RunSteps(count int) uint64 {
    var total uint64
    for i := 0; i < count; i++ {
        total += cpu.Step()
    }
    return total
}
