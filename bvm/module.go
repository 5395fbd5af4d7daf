// Package bvm implements the ByteCraft module and its on-disk container.
//
// The BVM file layout is bit-exact:
//
//	"BVM\0" | entry_point:u32le | code_size:u32le | data_size:u32le | code | data
//
// Bytes beyond the declared payload are tolerated on load.
package bvm

// Module is the exchange unit between the assembler, the container codec,
// and the virtual machine.
type Module struct {
	EntryPoint uint32 // offset of the first instruction within Code
	Code       []byte
	Data       []byte // zero-initialized at module construction
}

// NewModule builds a module with a zero-filled data region of the given size.
func NewModule(code []byte, dataSize uint32) *Module {
	return &Module{
		Code: code,
		Data: make([]byte, dataSize),
	}
}

// Image returns the flat memory image the VM executes: the code region
// immediately followed by the data region.
func (m *Module) Image() []byte {
	image := make([]byte, 0, len(m.Code)+len(m.Data))
	image = append(image, m.Code...)
	image = append(image, m.Data...)
	return image
}
