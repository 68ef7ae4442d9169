package lib

import (
    "bytes"
    "fmt"
    "io"
    "os"
)

/* iNES container format
 * https://wiki.nesdev.com/w/index.php/INES
 */

const TrainerLength = 512
const ProgramRomPageLength = 16384
const CharacterRomPageLength = 8192

type Mirroring int

const (
    MirrorHorizontal Mirroring = iota
    MirrorVertical
    MirrorFourScreen
)

func (mirroring Mirroring) String() string {
    switch mirroring {
        case MirrorHorizontal: return "horizontal"
        case MirrorVertical: return "vertical"
        case MirrorFourScreen: return "four-screen"
    }
    return "unknown"
}

type System int

const (
    SystemNES System = iota
    SystemVsUnisystem
    SystemPlayChoice10
)

func (system System) String() string {
    switch system {
        case SystemNES: return "NES"
        case SystemVsUnisystem: return "Vs. Unisystem"
        case SystemPlayChoice10: return "PlayChoice-10"
    }
    return "unknown"
}

type Region int

const (
    RegionNTSC Region = iota
    RegionPAL
)

func (region Region) String() string {
    switch region {
        case RegionNTSC: return "NTSC"
        case RegionPAL: return "PAL"
    }
    return "unknown"
}

/* NESFile is a decoded cartridge image. The cpu core consumes ProgramRom as
 * initial memory contents through a Bus; everything else is metadata for
 * whoever sits above.
 */
type NESFile struct {
    ProgramRom []byte
    CharacterRom []byte
    Trainer []byte
    Mapper byte
    Mirroring Mirroring
    System System
    Region Region
    Battery bool
}

func isINes(check []byte) bool {
    return len(check) == 4 && bytes.Equal(check, []byte{'N', 'E', 'S', 0x1a})
}

/* ParseNes decodes an iNES container. Any malformed input fails with a
 * descriptive reason and never hands back a partial image.
 */
func ParseNes(reader io.Reader) (NESFile, error) {
    header := make([]byte, 16)
    _, err := io.ReadFull(reader, header)
    if err != nil {
        return NESFile{}, fmt.Errorf("truncated iNES header: %v", err)
    }

    if !isINes(header[0:4]) {
        return NESFile{}, fmt.Errorf("bad magic bytes %q, not an iNES file", header[0:4])
    }

    programPages := int(header[4])
    characterPages := int(header[5])
    flags6 := header[6]
    flags7 := header[7]
    flags9 := header[9]

    var out NESFile

    /* flags 6: MMMM FTBV
     * V = vertical mirroring, B = battery, T = trainer, F = four screen,
     * M = mapper low nibble
     */
    switch {
        case flags6 & 0x8 != 0:
            out.Mirroring = MirrorFourScreen
        case flags6 & 0x1 != 0:
            out.Mirroring = MirrorVertical
        default:
            out.Mirroring = MirrorHorizontal
    }
    out.Battery = flags6 & 0x2 != 0

    /* flags 7 carries the system bits and the mapper high nibble */
    switch {
        case flags7 & 0x1 != 0:
            out.System = SystemVsUnisystem
        case flags7 & 0x2 != 0:
            out.System = SystemPlayChoice10
        default:
            out.System = SystemNES
    }

    out.Mapper = (flags7 & 0xf0) | (flags6 >> 4)

    if flags9 & 0x1 != 0 {
        out.Region = RegionPAL
    } else {
        out.Region = RegionNTSC
    }

    if flags6 & 0x4 != 0 {
        out.Trainer = make([]byte, TrainerLength)
        _, err = io.ReadFull(reader, out.Trainer)
        if err != nil {
            return NESFile{}, fmt.Errorf("truncated trainer section: %v", err)
        }
    }

    out.ProgramRom = make([]byte, programPages * ProgramRomPageLength)
    _, err = io.ReadFull(reader, out.ProgramRom)
    if err != nil {
        return NESFile{}, fmt.Errorf("truncated program rom: header declares %v pages (%v bytes): %v",
                                     programPages, len(out.ProgramRom), err)
    }

    out.CharacterRom = make([]byte, characterPages * CharacterRomPageLength)
    _, err = io.ReadFull(reader, out.CharacterRom)
    if err != nil {
        return NESFile{}, fmt.Errorf("truncated character rom: header declares %v pages (%v bytes): %v",
                                     characterPages, len(out.CharacterRom), err)
    }

    return out, nil
}

func ParseNesFile(path string) (NESFile, error) {
    file, err := os.Open(path)
    if err != nil {
        return NESFile{}, err
    }
    defer file.Close()

    out, err := ParseNes(file)
    if err != nil {
        return NESFile{}, fmt.Errorf("%v: %v", path, err)
    }
    return out, nil
}
