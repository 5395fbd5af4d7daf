package bvm

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

// Magic identifies a BVM container file.
var Magic = [4]byte{'B', 'V', 'M', 0}

// headerSize covers entry_point, code_size, and data_size.
const headerSize = 12

// Save writes a module in BVM format.
func Save(w io.Writer, m *Module) (err error) {
	var header [len(Magic) + headerSize]byte

	copy(header[:], Magic[:])
	binary.LittleEndian.PutUint32(header[4:], m.EntryPoint)
	binary.LittleEndian.PutUint32(header[8:], uint32(len(m.Code)))
	binary.LittleEndian.PutUint32(header[12:], uint32(len(m.Data)))

	if _, err = w.Write(header[:]); err != nil {
		return fmt.Errorf(f("write header: %w"), err)
	}
	if _, err = w.Write(m.Code); err != nil {
		return fmt.Errorf(f("write code: %w"), err)
	}
	if _, err = w.Write(m.Data); err != nil {
		return fmt.Errorf(f("write data: %w"), err)
	}

	return
}

// SaveFile writes a module to a BVM file on disk.
func SaveFile(path string, m *Module) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return
	}
	defer out.Close()

	return Save(out, m)
}

// Load reads a module in BVM format. Checks run in order: magic,
// complete header, complete payload. Trailing bytes beyond the declared
// payload are ignored.
func Load(r io.Reader) (m *Module, err error) {
	var magic [4]byte
	if _, err = io.ReadFull(r, magic[:]); err != nil || magic != Magic {
		err = ErrBadMagic
		return
	}

	var header [headerSize]byte
	if _, err = io.ReadFull(r, header[:]); err != nil {
		err = ErrTruncatedHeader
		return
	}

	m = &Module{
		EntryPoint: binary.LittleEndian.Uint32(header[0:]),
		Code:       make([]byte, binary.LittleEndian.Uint32(header[4:])),
		Data:       make([]byte, binary.LittleEndian.Uint32(header[8:])),
	}

	if _, err = io.ReadFull(r, m.Code); err != nil {
		m = nil
		err = ErrTruncatedPayload
		return
	}
	if _, err = io.ReadFull(r, m.Data); err != nil {
		m = nil
		err = ErrTruncatedPayload
		return
	}

	return
}

// LoadFile reads a module from a BVM file on disk.
func LoadFile(path string) (m *Module, err error) {
	in, err := os.Open(path)
	if err != nil {
		return
	}
	defer in.Close()

	return Load(in)
}
