package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/ezrec/bytecraft/asm"
)

// FuzzStep feeds arbitrary byte images to the interpreter. Whatever the
// bytes decode to, the machine must fault in-band rather than panic, and
// stepping a halted machine once more must not change r1.
func FuzzStep(f *testing.F) {
	assembler := &asm.Assembler{}
	if mod, err := assembler.Assemble(strings.NewReader(
		"_main:\nmov r1, 1\nadd r1, r1\ncmp r1, 2\njeq done\ndone:\nmov r1, 0\nsyscall\n")); err == nil {
		f.Add(mod.Code, uint8(0))
	}

	f.Add([]byte{}, uint8(0))
	f.Add([]byte{0xFF}, uint8(4))
	f.Add([]byte{0x01, 0x12, 0x0B, 0, 0, 0, 0}, uint8(0))
	f.Add([]byte{0x06, 0x02, 0x00, 0x00, 0x00, 0x00}, uint8(8))

	f.Fuzz(func(t *testing.T, code []byte, dataSize uint8) {
		memory := make([]byte, len(code)+int(dataSize))
		copy(memory, code)

		machine := New(memory, 0, uint32(len(code)), uint32(dataSize))
		machine.Stdin = bytes.NewReader(nil)
		machine.Stdout = &bytes.Buffer{}
		machine.Stderr = &bytes.Buffer{}

		for range 512 {
			if !machine.Running() {
				break
			}
			machine.Step()
		}

		if !machine.Running() {
			was := machine.Register(1)
			machine.Step()
			if machine.Register(1) != was {
				t.Fatalf("halted machine mutated state")
			}
		}
	})
}
