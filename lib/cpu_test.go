package lib

import (
    "testing"
)

func makeTestCPU(program []byte, base uint16) CPUState {
    ram := NewRAM()
    ram.Load(base, program)
    cpu := StartupState(ram)
    cpu.PC = base
    cpu.Status = 0
    cpu.SP = 0xff
    return cpu
}

/* step until brk sets the interrupt disable flag */
func runToBreak(test *testing.T, cpu *CPUState, maxSteps int){
    for i := 0; i < maxSteps; i++ {
        cpu.Step()
        if cpu.GetInterruptDisableFlag() {
            return
        }
    }
    test.Fatalf("program did not reach brk within %v steps", maxSteps)
}

func TestCPUSimple(test *testing.T){
    program := []byte{
        0xa9, 0x01,       // lda #$01
        0x8d, 0x00, 0x02, // sta $0200
        0xa9, 0x05,       // lda #$05
        0x8d, 0x01, 0x02, // sta $0201
        0xa9, 0x08,       // lda #$08
        0x8d, 0x02, 0x02, // sta $0202
    }

    cpu := makeTestCPU(program, 0x1000)
    cpu.RunSteps(6)

    if cpu.A != 0x8 {
        test.Fatalf("A register expected to be 0x8 but was 0x%x", cpu.A)
    }

    if cpu.PC != 0x100f {
        test.Fatalf("PC register expected to be 0x100f but was 0x%x", cpu.PC)
    }

    if cpu.LoadMemory(0x200) != 0x1 {
        test.Fatalf("expected memory location 0x200 to contain 0x1 but was 0x%x", cpu.LoadMemory(0x200))
    }

    if cpu.LoadMemory(0x201) != 0x5 {
        test.Fatalf("expected memory location 0x201 to contain 0x5 but was 0x%x", cpu.LoadMemory(0x201))
    }

    if cpu.LoadMemory(0x202) != 0x8 {
        test.Fatalf("expected memory location 0x202 to contain 0x8 but was 0x%x", cpu.LoadMemory(0x202))
    }
}

/* lda #$05, adc #$03: two steps leave 8 in the accumulator and burn 4
 * cycles before the brk ever runs
 */
func TestAddWithCarryScenario(test *testing.T){
    program := []byte{
        0xa9, 0x05, // lda #$05
        0x69, 0x03, // adc #$03
        0x00,       // brk
    }

    cpu := makeTestCPU(program, 0x0200)

    cycles := cpu.Step()
    cycles += cpu.Step()

    if cpu.A != 8 {
        test.Fatalf("A register expected to be 8 but was 0x%x", cpu.A)
    }

    if cycles != 4 {
        test.Fatalf("expected 4 cycles for lda+adc but counted %v", cycles)
    }

    if cpu.GetCarryFlag() || cpu.GetNegativeFlag() || cpu.GetZeroFlag() {
        test.Fatalf("expected carry, negative and zero all clear, status was 0x%02x", cpu.Status)
    }
}

func TestTransferAndAdd(test *testing.T){
    program := []byte{
        0xa9, 0xc0, // lda #$c0
        0xaa,       // tax
        0xe8,       // inx
        0x69, 0xc4, // adc #$c4
        0x00,       // brk
    }

    cpu := makeTestCPU(program, 0x0600)
    cpu.RunSteps(4)

    if cpu.A != 0x84 {
        test.Fatalf("A register expected to be 0x84 but was 0x%x", cpu.A)
    }

    if cpu.X != 0xc1 {
        test.Fatalf("X register expected to be 0xc1 but was 0x%x", cpu.X)
    }

    if !cpu.GetCarryFlag() {
        test.Fatalf("expected carry set after 0xc0 + 0xc4")
    }
}

func TestCountdownBranch(test *testing.T){
    program := []byte{
        0xa2, 0x08,       // ldx #$08
        0xca,             // dex
        0x8e, 0x00, 0x02, // stx $0200
        0xe0, 0x03,       // cpx #$03
        0xd0, 0xf8,       // bne -8
        0x8e, 0x01, 0x02, // stx $0201
        0x00,             // brk
    }

    cpu := makeTestCPU(program, 0x5000)
    runToBreak(test, &cpu, 50)

    if cpu.X != 0x03 {
        test.Fatalf("X register expected to be 0x03 but was 0x%x", cpu.X)
    }

    if cpu.LoadMemory(0x200) != 0x3 {
        test.Fatalf("expected memory location 0x200 to be 0x3 but was 0x%x", cpu.LoadMemory(0x200))
    }

    if cpu.LoadMemory(0x201) != 0x3 {
        test.Fatalf("expected memory location 0x201 to be 0x3 but was 0x%x", cpu.LoadMemory(0x201))
    }
}

func TestBranchCycles(test *testing.T){
    /* not taken: base 2 cycles */
    cpu := makeTestCPU([]byte{0xf0, 0x05}, 0x0600) // beq +5
    cycles := cpu.Step()
    if cycles != 2 {
        test.Fatalf("branch not taken expected 2 cycles but was %v", cycles)
    }
    if cpu.PC != 0x0602 {
        test.Fatalf("branch not taken expected PC 0x0602 but was 0x%x", cpu.PC)
    }

    /* taken, same page: 3 cycles */
    cpu = makeTestCPU([]byte{0xf0, 0x05}, 0x0600)
    cpu.SetZeroFlag(true)
    cycles = cpu.Step()
    if cycles != 3 {
        test.Fatalf("branch taken expected 3 cycles but was %v", cycles)
    }
    if cpu.PC != 0x0607 {
        test.Fatalf("branch taken expected PC 0x0607 but was 0x%x", cpu.PC)
    }

    /* taken across a page: 4 cycles. the branch ends at 0x02ff and its
     * target is 0x0300
     */
    cpu = makeTestCPU([]byte{0xf0, 0x01}, 0x02fd)
    cpu.SetZeroFlag(true)
    cycles = cpu.Step()
    if cycles != 4 {
        test.Fatalf("branch across page expected 4 cycles but was %v", cycles)
    }
    if cpu.PC != 0x0300 {
        test.Fatalf("branch across page expected PC 0x0300 but was 0x%x", cpu.PC)
    }
}

func TestStackDiscipline(test *testing.T){
    program := []byte{
        0xa9, 0x3c, // lda #$3c
        0x48,       // pha
        0xa9, 0x00, // lda #$00
        0x68,       // pla
    }

    cpu := makeTestCPU(program, 0x0600)
    spBefore := cpu.SP
    cpu.RunSteps(4)

    if cpu.A != 0x3c {
        test.Fatalf("pha/pla expected to restore A to 0x3c but was 0x%x", cpu.A)
    }

    if cpu.SP != spBefore {
        test.Fatalf("pha/pla expected to leave SP at 0x%x but was 0x%x", spBefore, cpu.SP)
    }

    if cpu.GetZeroFlag() {
        test.Fatalf("pla of a non-zero value must clear the zero flag")
    }
}

func TestStatusRoundTrip(test *testing.T){
    program := []byte{
        0x38, // sec
        0xf8, // sed
        0x08, // php
        0x18, // clc
        0xd8, // cld
        0x28, // plp
    }

    cpu := makeTestCPU(program, 0x0600)
    cpu.RunSteps(3)

    /* php pushes with bits 4 and 5 forced on */
    pushed := cpu.LoadMemory(StackBase + uint16(cpu.SP) + 1)
    if pushed & 0x30 != 0x30 {
        test.Fatalf("php expected to push bits 4 and 5 set but pushed 0x%02x", pushed)
    }

    cpu.RunSteps(3)

    if !cpu.GetCarryFlag() {
        test.Fatalf("plp expected to restore the carry flag")
    }

    if !cpu.GetDecimalFlag() {
        test.Fatalf("plp expected to restore the decimal flag")
    }

    /* the break bit never materializes in the register */
    if cpu.Status & statusBreakBit != 0 {
        test.Fatalf("plp must not set the break bit in the register, status was 0x%02x", cpu.Status)
    }
}

func TestSubroutine(test *testing.T){
    program := []byte{
        0x20, 0x08, 0x50, // jsr $5008
        0xa0, 0x10,       // ldy #$10
        0x4c, 0x0c, 0x50, // jmp $500c
        0xa2, 0x03,       // ldx #$03
        0xe8,             // inx
        0x60,             // rts
        0x00,             // brk
    }

    cpu := makeTestCPU(program, 0x5000)
    runToBreak(test, &cpu, 50)

    if cpu.X != 0x4 {
        test.Fatalf("X register expected to be 0x4 but was 0x%x", cpu.X)
    }

    if cpu.Y != 0x10 {
        test.Fatalf("Y register expected to be 0x10 but was 0x%x", cpu.Y)
    }
}

func TestJsrRtsRoundTrip(test *testing.T){
    program := []byte{
        0x20, 0x10, 0x06, // jsr $0610
    }

    cpu := makeTestCPU(program, 0x0600)
    cpu.StoreMemory(0x0610, 0x60) // rts
    spBefore := cpu.SP

    cpu.Step()
    if cpu.PC != 0x0610 {
        test.Fatalf("jsr expected to land at 0x0610 but PC was 0x%x", cpu.PC)
    }

    cycles := cpu.Step()
    if cpu.PC != 0x0603 {
        test.Fatalf("rts expected to return to 0x0603 but PC was 0x%x", cpu.PC)
    }

    if cycles != 6 {
        test.Fatalf("rts expected 6 cycles but was %v", cycles)
    }

    if cpu.SP != spBefore {
        test.Fatalf("jsr/rts expected to leave SP at 0x%x but was 0x%x", spBefore, cpu.SP)
    }
}

/* a pointer at $02ff reads its high byte from $0200, not $0300 */
func TestIndirectJumpPageWrapBug(test *testing.T){
    cpu := makeTestCPU([]byte{0x6c, 0xff, 0x02}, 0x0600) // jmp ($02ff)

    cpu.StoreMemory(0x02ff, 0x34) // target low
    cpu.StoreMemory(0x0200, 0x12) // target high, from the wrapped page
    cpu.StoreMemory(0x0300, 0x56) // the byte a bug-free cpu would read

    cpu.Step()

    if cpu.PC != 0x1234 {
        test.Fatalf("indirect jmp expected the buggy target 0x1234 but PC was 0x%x", cpu.PC)
    }
}

func TestBit(test *testing.T){
    /* 3 & 1 = 1: zero flag stays clear */
    program := []byte{
        0xa9, 0x03, // lda #$03
        0x85, 0x10, // sta $10
        0xa9, 0x01, // lda #$01
        0x24, 0x10, // bit $10
        0x00,       // brk
    }

    cpu := makeTestCPU(program, 0x5000)
    runToBreak(test, &cpu, 50)

    if cpu.A != 0x1 {
        test.Fatalf("expected A register to be 0x1 but was 0x%x", cpu.A)
    }

    if cpu.GetZeroFlag() {
        test.Fatalf("expected zero flag to be clear after bit")
    }

    /* 4 & 3 = 0: zero flag set */
    program = []byte{
        0xa9, 0x03, // lda #$03
        0x85, 0x10, // sta $10
        0xa9, 0x04, // lda #$04
        0x24, 0x10, // bit $10
        0x00,       // brk
    }

    cpu = makeTestCPU(program, 0x5000)
    runToBreak(test, &cpu, 50)

    if !cpu.GetZeroFlag() {
        test.Fatalf("expected zero flag to be set after bit")
    }

    if cpu.GetNegativeFlag() || cpu.GetOverflowFlag() {
        test.Fatalf("negative and overflow must mirror bits 7/6 of the operand, status was 0x%02x", cpu.Status)
    }

    /* negative and overflow come from bits 7 and 6 of the operand itself,
     * whatever the accumulator holds
     */
    program = []byte{
        0xa9, 0xc0, // lda #$c0
        0x85, 0x10, // sta $10
        0xa9, 0x04, // lda #$04
        0x24, 0x10, // bit $10
        0x00,       // brk
    }

    cpu = makeTestCPU(program, 0x5000)
    runToBreak(test, &cpu, 50)

    if !cpu.GetNegativeFlag() {
        test.Fatalf("expected negative flag set from bit 7 of the operand")
    }

    if !cpu.GetOverflowFlag() {
        test.Fatalf("expected overflow flag set from bit 6 of the operand")
    }
}

/* an independent bit-level model of add-with-carry */
func referenceAdc(a byte, value byte, carry bool) (byte, bool, bool) {
    sum := uint16(a) + uint16(value)
    if carry {
        sum += 1
    }

    result := byte(sum)
    carryOut := sum > 0xff
    overflow := (a ^ result) & (value ^ result) & 0x80 != 0
    return result, carryOut, overflow
}

func TestAdcAgainstReference(test *testing.T){
    cpu := makeTestCPU(nil, 0)

    for a := 0; a < 256; a++ {
        for value := 0; value < 256; value++ {
            for _, carry := range []bool{false, true} {
                expected, carryOut, overflow := referenceAdc(byte(a), byte(value), carry)

                cpu.A = byte(a)
                cpu.SetCarryFlag(carry)
                cpu.doAdc(byte(value))

                if cpu.A != expected {
                    test.Fatalf("adc 0x%02x + 0x%02x carry %v: expected 0x%02x but was 0x%02x", a, value, carry, expected, cpu.A)
                }

                if cpu.GetCarryFlag() != carryOut {
                    test.Fatalf("adc 0x%02x + 0x%02x carry %v: carry out expected %v", a, value, carry, carryOut)
                }

                if cpu.GetOverflowFlag() != overflow {
                    test.Fatalf("adc 0x%02x + 0x%02x carry %v: overflow expected %v", a, value, carry, overflow)
                }

                if cpu.GetZeroFlag() != (expected == 0) {
                    test.Fatalf("adc 0x%02x + 0x%02x carry %v: zero flag wrong", a, value, carry)
                }

                if cpu.GetNegativeFlag() != (expected & 0x80 != 0) {
                    test.Fatalf("adc 0x%02x + 0x%02x carry %v: negative flag wrong", a, value, carry)
                }
            }
        }
    }
}

/* sbc is adc with the operand inverted */
func TestSbcAgainstReference(test *testing.T){
    cpu := makeTestCPU(nil, 0)

    for a := 0; a < 256; a++ {
        for value := 0; value < 256; value++ {
            for _, carry := range []bool{false, true} {
                expected, carryOut, overflow := referenceAdc(byte(a), ^byte(value), carry)

                cpu.A = byte(a)
                cpu.SetCarryFlag(carry)
                cpu.doSbc(byte(value))

                if cpu.A != expected {
                    test.Fatalf("sbc 0x%02x - 0x%02x carry %v: expected 0x%02x but was 0x%02x", a, value, carry, expected, cpu.A)
                }

                if cpu.GetCarryFlag() != carryOut {
                    test.Fatalf("sbc 0x%02x - 0x%02x carry %v: carry out expected %v", a, value, carry, carryOut)
                }

                if cpu.GetOverflowFlag() != overflow {
                    test.Fatalf("sbc 0x%02x - 0x%02x carry %v: overflow expected %v", a, value, carry, overflow)
                }
            }
        }
    }
}

func TestCompareFlags(test *testing.T){
    cpu := makeTestCPU(nil, 0)

    cpu.A = 0x40
    cpu.doCmp(0x30)
    if !cpu.GetCarryFlag() || cpu.GetZeroFlag() {
        test.Fatalf("cmp greater: expected carry set, zero clear, status 0x%02x", cpu.Status)
    }

    cpu.doCmp(0x40)
    if !cpu.GetCarryFlag() || !cpu.GetZeroFlag() {
        test.Fatalf("cmp equal: expected carry and zero set, status 0x%02x", cpu.Status)
    }

    cpu.doCmp(0x50)
    if cpu.GetCarryFlag() || cpu.GetZeroFlag() || !cpu.GetNegativeFlag() {
        test.Fatalf("cmp less: expected borrow and negative, status 0x%02x", cpu.Status)
    }
}

func TestShiftsAndRotates(test *testing.T){
    cpu := makeTestCPU(nil, 0)

    if out := cpu.doAsl(0x81); out != 0x02 || !cpu.GetCarryFlag() {
        test.Fatalf("asl 0x81 expected 0x02 with carry, got 0x%02x carry %v", out, cpu.GetCarryFlag())
    }

    if out := cpu.doLsr(0x01); out != 0x00 || !cpu.GetCarryFlag() || !cpu.GetZeroFlag() {
        test.Fatalf("lsr 0x01 expected zero with carry, got 0x%02x", out)
    }

    cpu.SetCarryFlag(true)
    if out := cpu.doRol(0x80); out != 0x01 || !cpu.GetCarryFlag() {
        test.Fatalf("rol 0x80 with carry expected 0x01 with carry, got 0x%02x", out)
    }

    cpu.SetCarryFlag(true)
    if out := cpu.doRor(0x01); out != 0x80 || !cpu.GetCarryFlag() || !cpu.GetNegativeFlag() {
        test.Fatalf("ror 0x01 with carry expected 0x80 with carry and negative, got 0x%02x", out)
    }

    /* read-modify-write through memory */
    rmw := makeTestCPU([]byte{0x0e, 0x00, 0x02}, 0x0600) // asl $0200
    rmw.StoreMemory(0x0200, 0x41)
    cycles := rmw.Step()

    if rmw.LoadMemory(0x0200) != 0x82 {
        test.Fatalf("asl $0200 expected memory 0x82 but was 0x%02x", rmw.LoadMemory(0x0200))
    }

    if cycles != 6 {
        test.Fatalf("asl absolute expected 6 cycles but was %v", cycles)
    }

    /* accumulator form */
    acc := makeTestCPU([]byte{0x0a}, 0x0600) // asl a
    acc.A = 0x80
    acc.Step()
    if acc.A != 0x00 || !acc.GetCarryFlag() || !acc.GetZeroFlag() {
        test.Fatalf("asl a of 0x80 expected 0 with carry, A was 0x%02x status 0x%02x", acc.A, acc.Status)
    }
}

func TestIncDecWraparound(test *testing.T){
    cpu := makeTestCPU(nil, 0)

    if out := cpu.doInc(0xff); out != 0x00 || !cpu.GetZeroFlag() {
        test.Fatalf("inc 0xff expected to wrap to zero, got 0x%02x", out)
    }

    if out := cpu.doDec(0x00); out != 0xff || !cpu.GetNegativeFlag() {
        test.Fatalf("dec 0x00 expected to wrap to 0xff negative, got 0x%02x", out)
    }
}

func TestZeroPageIndexWraps(test *testing.T){
    cpu := makeTestCPU([]byte{0xb5, 0xf0}, 0x0600) // lda $f0,x
    cpu.X = 0x20
    cpu.StoreMemory(0x0010, 0x7a) // 0xf0 + 0x20 wraps to 0x10
    cpu.Step()

    if cpu.A != 0x7a {
        test.Fatalf("zeropage,x expected to wrap within the page, A was 0x%02x", cpu.A)
    }
}

func TestPageCrossPenalty(test *testing.T){
    /* lda $01f0,x with x=0x20 lands on 0x0210, crossing a page: 5 cycles */
    cpu := makeTestCPU([]byte{0xbd, 0xf0, 0x01}, 0x0600)
    cpu.X = 0x20
    cpu.StoreMemory(0x0210, 0x11)
    cycles := cpu.Step()

    if cpu.A != 0x11 {
        test.Fatalf("lda absolute,x expected 0x11 but A was 0x%02x", cpu.A)
    }

    if cycles != 5 {
        test.Fatalf("page-crossing lda absolute,x expected 5 cycles but was %v", cycles)
    }

    /* same read without the cross: 4 cycles */
    cpu = makeTestCPU([]byte{0xbd, 0xf0, 0x01}, 0x0600)
    cpu.X = 0x01
    cycles = cpu.Step()
    if cycles != 4 {
        test.Fatalf("lda absolute,x without page cross expected 4 cycles but was %v", cycles)
    }

    /* sta absolute,x always pays the indexed cycle: 5 either way */
    cpu = makeTestCPU([]byte{0x9d, 0xf0, 0x01}, 0x0600)
    cpu.X = 0x01
    cycles = cpu.Step()
    if cycles != 5 {
        test.Fatalf("sta absolute,x expected 5 cycles but was %v", cycles)
    }

    /* (zp),y with the add crossing a page: 6 cycles */
    cpu = makeTestCPU([]byte{0xb1, 0x10}, 0x0600)
    cpu.Y = 0x20
    cpu.StoreMemory(0x0010, 0xf0)
    cpu.StoreMemory(0x0011, 0x02)
    cpu.StoreMemory(0x0310, 0x22)
    cycles = cpu.Step()

    if cpu.A != 0x22 {
        test.Fatalf("lda (zp),y expected 0x22 but A was 0x%02x", cpu.A)
    }

    if cycles != 6 {
        test.Fatalf("page-crossing lda (zp),y expected 6 cycles but was %v", cycles)
    }
}

func TestIndexedIndirectLoad(test *testing.T){
    program := []byte{
        0xa2, 0x01,       // ldx #$01
        0xa9, 0x05,       // lda #$05
        0x85, 0x01,       // sta $01
        0xa9, 0x07,       // lda #$07
        0x85, 0x02,       // sta $02
        0xa0, 0x0a,       // ldy #$0a
        0x8c, 0x05, 0x07, // sty $0705
        0xa1, 0x00,       // lda ($00,x)
        0x00,             // brk
    }

    cpu := makeTestCPU(program, 0x5000)
    runToBreak(test, &cpu, 50)

    if cpu.A != 0x0a {
        test.Fatalf("expected A register to be 0x0a but was 0x%x", cpu.A)
    }
}

func TestUnknownOpcodeKeepsGoing(test *testing.T){
    /* 0x02 is undefined: one byte, two cycles, no effect */
    cpu := makeTestCPU([]byte{0x02, 0xa9, 0x44}, 0x0600)

    cycles := cpu.Step()
    if cycles != 2 {
        test.Fatalf("undefined opcode expected 2 cycles but was %v", cycles)
    }

    if cpu.PC != 0x0601 {
        test.Fatalf("undefined opcode expected PC to advance to 0x0601 but was 0x%x", cpu.PC)
    }

    cpu.Step()
    if cpu.A != 0x44 {
        test.Fatalf("execution expected to continue past the undefined opcode, A was 0x%02x", cpu.A)
    }
}

func TestBrkAndRti(test *testing.T){
    ram := NewRAM()
    ram.Load(0x0600, []byte{0x00}) // brk
    ram.Load(0x4000, []byte{0x40}) // rti
    ram.SetVector(IRQVector, 0x4000)

    cpu := StartupState(ram)
    cpu.PC = 0x0600
    cpu.Status = 0
    cpu.SP = 0xff

    cycles := cpu.Step()
    if cycles != 7 {
        test.Fatalf("brk expected 7 cycles but was %v", cycles)
    }

    if cpu.PC != 0x4000 {
        test.Fatalf("brk expected to jump through the irq vector to 0x4000 but PC was 0x%x", cpu.PC)
    }

    if !cpu.GetInterruptDisableFlag() {
        test.Fatalf("brk expected to set the interrupt disable flag")
    }

    /* the pushed status carries the break convention bits */
    pushed := cpu.LoadMemory(StackBase + uint16(cpu.SP) + 1)
    if pushed & 0x30 != 0x30 {
        test.Fatalf("brk expected to push bits 4 and 5 set but pushed 0x%02x", pushed)
    }

    cpu.Step() // rti
    if cpu.PC != 0x0602 {
        test.Fatalf("rti expected to return past the brk padding byte to 0x0602 but PC was 0x%x", cpu.PC)
    }

    if cpu.GetInterruptDisableFlag() {
        test.Fatalf("rti expected to restore the pre-brk status")
    }
}

func TestNMI(test *testing.T){
    ram := NewRAM()
    ram.SetVector(NMIVector, 0x4000)

    cpu := StartupState(ram)
    cpu.PC = 0x0600
    cpu.Status = 0
    cpu.SP = 0xff

    cpu.SignalNMI()
    cycles := cpu.Step()

    if cycles != 7 {
        test.Fatalf("nmi expected 7 cycles but was %v", cycles)
    }

    if cpu.PC != 0x4000 {
        test.Fatalf("nmi expected PC 0x4000 but was 0x%x", cpu.PC)
    }

    /* hardware interrupts push with the break bit clear */
    pushed := cpu.LoadMemory(StackBase + uint16(cpu.SP) + 1)
    if pushed & statusBreakBit != 0 {
        test.Fatalf("nmi expected to push the break bit clear but pushed 0x%02x", pushed)
    }
    if pushed & statusReservedBit == 0 {
        test.Fatalf("nmi expected to push bit 5 set but pushed 0x%02x", pushed)
    }

    /* the pushed return address is the interrupted PC */
    low := cpu.LoadMemory(StackBase + uint16(cpu.SP) + 2)
    high := cpu.LoadMemory(StackBase + uint16(cpu.SP) + 3)
    if (uint16(high) << 8) | uint16(low) != 0x0600 {
        test.Fatalf("nmi expected to push PC 0x0600 but pushed 0x%02x%02x", high, low)
    }
}

func TestIRQMasking(test *testing.T){
    ram := NewRAM()
    ram.Load(0x0600, []byte{0xea, 0xea}) // nop, nop
    ram.SetVector(IRQVector, 0x4000)

    /* with interrupts disabled the irq waits */
    cpu := StartupState(ram)
    cpu.PC = 0x0600
    cpu.Status = 0
    cpu.SP = 0xff
    cpu.SetInterruptDisableFlag(true)

    cpu.SignalIRQ()
    cpu.Step()
    if cpu.PC != 0x0601 {
        test.Fatalf("masked irq must not interrupt, PC was 0x%x", cpu.PC)
    }

    /* clearing the flag lets it through at the next boundary */
    cpu.SetInterruptDisableFlag(false)
    cycles := cpu.Step()
    if cycles != 7 {
        test.Fatalf("irq expected 7 cycles but was %v", cycles)
    }
    if cpu.PC != 0x4000 {
        test.Fatalf("irq expected PC 0x4000 but was 0x%x", cpu.PC)
    }
    if !cpu.GetInterruptDisableFlag() {
        test.Fatalf("irq expected to set the interrupt disable flag")
    }
}

func TestReset(test *testing.T){
    ram := NewRAM()
    ram.SetVector(ResetVector, 0x8000)

    cpu := StartupState(ram)
    spBefore := cpu.SP
    cpu.Reset()

    if cpu.PC != 0x8000 {
        test.Fatalf("reset expected PC 0x8000 but was 0x%x", cpu.PC)
    }

    if cpu.SP != spBefore - 3 {
        test.Fatalf("reset expected SP to drop by 3, was 0x%x", cpu.SP)
    }

    if !cpu.GetInterruptDisableFlag() {
        test.Fatalf("reset expected the interrupt disable flag set")
    }
}

func TestStartupState(test *testing.T){
    cpu := StartupState(NewRAM())

    if cpu.SP != 0xfd {
        test.Fatalf("power-up SP expected 0xfd but was 0x%x", cpu.SP)
    }

    if cpu.Status != 0x24 {
        test.Fatalf("power-up status expected 0x24 but was 0x%02x", cpu.Status)
    }

    if cpu.A != 0 || cpu.X != 0 || cpu.Y != 0 {
        test.Fatalf("power-up registers expected zeroed")
    }
}

func TestDecimalFlagIsStoredButIgnored(test *testing.T){
    program := []byte{
        0xf8,       // sed
        0xa9, 0x09, // lda #$09
        0x69, 0x01, // adc #$01
    }

    cpu := makeTestCPU(program, 0x0600)
    cpu.RunSteps(3)

    if !cpu.GetDecimalFlag() {
        test.Fatalf("sed expected to set the decimal flag")
    }

    /* the 2a03 has no bcd correction: 0x09 + 1 is 0x0a, not 0x10 */
    if cpu.A != 0x0a {
        test.Fatalf("adc with decimal set expected binary 0x0a but was 0x%02x", cpu.A)
    }
}

func BenchmarkSimple(benchmark *testing.B){
    program := []byte{
        0xa2, 0x02,       // ldx #$02
        0x8a,             // txa
        0x85, 0x10,       // sta $10
        0xe8,             // inx
        0x4c, 0x00, 0x06, // jmp $0600
    }

    cpu := makeTestCPU(program, 0x0600)

    benchmark.ResetTimer()
    for i := 0; i < benchmark.N; i++ {
        cpu.Step()
    }
}
