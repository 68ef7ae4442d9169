package lib

/* http://wiki.nesdev.com/w/index.php/CPU_memory_map */

/* RAM is a flat 64KiB address space. Tests and raw programs use it; a real
 * console wiring goes through Bus instead.
 */
type RAM struct {
    data []byte
}

func NewRAM() *RAM {
    return &RAM{
        data: make([]byte, 0x10000),
    }
}

func (ram *RAM) Read(address uint16) byte {
    return ram.data[address]
}

func (ram *RAM) Write(address uint16, value byte){
    ram.data[address] = value
}

/* Load copies a program image into the address space starting at address */
func (ram *RAM) Load(address uint16, program []byte){
    copy(ram.data[address:], program)
}

/* SetVector writes a 16-bit little-endian vector, e.g. the reset vector */
func (ram *RAM) SetVector(vector uint16, target uint16){
    ram.data[vector] = byte(target)
    ram.data[vector + 1] = byte(target >> 8)
}

/* Bus wires the NES memory map in front of the cpu:
 *
 *   0000-07ff  2KiB work ram
 *   0800-1fff  mirrors of the work ram
 *   2000-5fff  ppu/apu/input registers, unmapped here: reads are open bus
 *              (0) and writes are dropped
 *   6000-7fff  cartridge prg ram
 *   8000-ffff  cartridge prg rom, NROM style: a 16KiB image mirrors into
 *              both halves, a 32KiB image maps straight through
 *
 * Mapper bank switching beyond NROM stays outside this core.
 */
type Bus struct {
    ram [0x800]byte
    prgRam [0x2000]byte
    prg []byte
}

func NewBus(programRom []byte) *Bus {
    return &Bus{
        prg: programRom,
    }
}

func (bus *Bus) Read(address uint16) byte {
    switch {
        case address < 0x2000:
            return bus.ram[address & 0x7ff]
        case address >= 0x8000:
            if len(bus.prg) == 0 {
                return 0
            }
            return bus.prg[int(address - 0x8000) % len(bus.prg)]
        case address >= 0x6000:
            return bus.prgRam[address - 0x6000]
    }
    return 0
}

func (bus *Bus) Write(address uint16, value byte){
    switch {
        case address < 0x2000:
            bus.ram[address & 0x7ff] = value
        case address >= 0x8000:
            /* rom. writes would be mapper register traffic, which this
             * bus does not carry
             */
        case address >= 0x6000:
            bus.prgRam[address - 0x6000] = value
    }
}
