// Package isa defines the ByteCraft architecture.
//
// The machine has eleven 32-bit registers: eight general purpose (r1-r8),
// the instruction pointer IP, the flags register rF, and the sign-mode
// register rS (only bit 0 is meaningful). Instructions are encoded as an
// opcode byte, an operand-mode byte packing two 4-bit operand type nibbles
// (destination high, source low), and the operand payload. NOP and SYSCALL
// are bare single-byte instructions.
//
// The assembler sizes instructions with EncodedSize. The encoder, the
// listing decoder, and the virtual machine each read operand payloads by
// operand type; the tests check that the bytes they produce or consume
// match EncodedSize.
package isa

// Register is an architectural register index.
type Register uint8

//go:generate go tool stringer -linecomment -type=Register
const (
	R1 = Register(0)  // r1
	R2 = Register(1)  // r2
	R3 = Register(2)  // r3
	R4 = Register(3)  // r4
	R5 = Register(4)  // r5
	R6 = Register(5)  // r6
	R7 = Register(6)  // r7
	R8 = Register(7)  // r8
	IP = Register(8)  // IP
	RF = Register(9)  // rF
	RS = Register(10) // rS
)

// REG_COUNT is the number of architectural registers.
const REG_COUNT = 11

// Valid returns true if the register index is architecturally defined.
func (r Register) Valid() bool {
	return r < REG_COUNT
}

// RegisterName maps a register index to its display name.
// Unknown indexes map to "??".
func RegisterName(index uint8) string {
	if index >= REG_COUNT {
		return "??"
	}
	return Register(index).String()
}

// Flag bits occupy the low byte of rF. The remaining bits are reserved
// and must be preserved by operations that edit flags selectively.
const (
	F_EQ        = uint32(1) << 0 // comparison: equal
	F_GT        = uint32(1) << 1 // comparison: greater-than
	F_LT        = uint32(1) << 2 // comparison: less-than
	F_TEST_TRUE = uint32(1) << 3 // last branch predicate held
	F_BAD_INSTR = uint32(1) << 4 // fault: undecodable instruction
	F_IP_OOB    = uint32(1) << 5 // fault: fetch outside the code region
	F_READ_OOB  = uint32(1) << 6 // fault: data read out of bounds
	F_WRITE_OOB = uint32(1) << 7 // fault: data write out of bounds
)

// F_FAULTS masks the flag bits that indicate a fault halt.
const F_FAULTS = F_BAD_INSTR | F_IP_OOB | F_READ_OOB | F_WRITE_OOB

var flagNames = []struct {
	bit  uint32
	name string
}{
	{F_EQ, "EQ"},
	{F_GT, "GT"},
	{F_LT, "LT"},
	{F_TEST_TRUE, "TEST"},
	{F_BAD_INSTR, "BAD"},
	{F_IP_OOB, "IP_OOB"},
	{F_READ_OOB, "R_OOB"},
	{F_WRITE_OOB, "W_OOB"},
}

// FlagString renders the set flag bits of an rF value as a space-separated
// list of flag names.
func FlagString(rf uint32) (out string) {
	for _, fn := range flagNames {
		if rf&fn.bit != 0 {
			out += fn.name + " "
		}
	}
	return
}

// Op is an instruction opcode. The numeric identities are fixed by the
// on-disk format.
type Op uint8

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_NOP     = Op(0)  // nop
	OP_MOV     = Op(1)  // mov
	OP_ADD     = Op(2)  // add
	OP_SUB     = Op(3)  // sub
	OP_XOR     = Op(4)  // xor
	OP_CMP     = Op(5)  // cmp
	OP_JMP     = Op(6)  // jmp
	OP_JEQ     = Op(7)  // jeq
	OP_JNEQ    = Op(8)  // jneq
	OP_JLA     = Op(9)  // jla
	OP_JLE     = Op(10) // jle
	OP_SYSCALL = Op(11) // syscall
)

// Valid returns true if the opcode is architecturally defined.
func (op Op) Valid() bool {
	return op <= OP_SYSCALL
}

// Bare returns true for instructions encoded as a single opcode byte
// with no mode byte or operands.
func (op Op) Bare() bool {
	return op == OP_NOP || op == OP_SYSCALL
}

// Branch returns true for the branch opcodes, which encode only a source
// operand (the destination nibble is OT_NONE).
func (op Op) Branch() bool {
	return op >= OP_JMP && op <= OP_JLE
}

// OperandType is an operand kind nibble in the instruction mode byte.
type OperandType uint8

//go:generate go tool stringer -linecomment -type=OperandType
const (
	OT_NONE = OperandType(0) // none
	OT_REG  = OperandType(1) // reg
	OT_IMM  = OperandType(2) // imm
	OT_MEM  = OperandType(3) // mem
)

// EncodedSize returns the payload size in bytes of one encoded operand.
func (ot OperandType) EncodedSize() int {
	switch ot {
	case OT_REG:
		return 1
	case OT_IMM, OT_MEM:
		return 4
	default:
		return 0
	}
}

// Mode packs destination and source operand types into a mode byte.
func Mode(dst, src OperandType) uint8 {
	return uint8(dst)<<4 | uint8(src)
}

// ModeDecode unpacks a mode byte into destination and source operand types.
// Nibble values above OT_MEM are preserved so callers can reject them.
func ModeDecode(mode uint8) (dst, src OperandType) {
	dst = OperandType(mode >> 4 & 0xF)
	src = OperandType(mode & 0xF)
	return
}

// EncodedSize returns the full encoded size in bytes of an instruction with
// the given opcode and operand types. The assembler's first pass sizes
// instructions with it; Instruction.Append and Decode do not call it, and
// the tests check that they agree with it.
func EncodedSize(op Op, dst, src OperandType) int {
	switch {
	case op.Bare():
		return 1
	case op.Branch():
		return 1 + 1 + src.EncodedSize()
	default:
		return 1 + 1 + dst.EncodedSize() + src.EncodedSize()
	}
}

// SysId is a syscall identifier, carried in r1 on entry to SYSCALL.
type SysId uint32

//go:generate go tool stringer -linecomment -type=SysId
const (
	SC_EXIT  = SysId(0) // exit
	SC_WRITE = SysId(1) // write
	SC_READ  = SysId(2) // read
	SC_OPEN  = SysId(3) // open
)
