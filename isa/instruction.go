package isa

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ezrec/bytecraft/translate"
)

var f = translate.From

var (
	ErrShortCode  = errors.New(f("code truncated inside instruction"))
	ErrBadOpcode  = errors.New(f("unknown opcode"))
	ErrBadOperand = errors.New(f("unknown operand type"))
)

// Operand is one decoded instruction operand.
type Operand struct {
	Type  OperandType
	Reg   Register // register index, when Type is OT_REG
	Value uint32   // immediate or absolute address, when Type is OT_IMM or OT_MEM
}

// String returns the assembly rendering of the operand.
func (o Operand) String() string {
	switch o.Type {
	case OT_REG:
		return RegisterName(uint8(o.Reg))
	case OT_IMM:
		return fmt.Sprintf("0x%X", o.Value)
	case OT_MEM:
		return fmt.Sprintf("[0x%X]", o.Value)
	default:
		return ""
	}
}

// append writes the operand payload.
func (o Operand) append(code []byte) []byte {
	switch o.Type {
	case OT_REG:
		code = append(code, uint8(o.Reg))
	case OT_IMM, OT_MEM:
		code = binary.LittleEndian.AppendUint32(code, o.Value)
	}
	return code
}

// Instruction is a fully decoded instruction: opcode plus destination and
// source operands. Bare instructions carry OT_NONE in both slots.
type Instruction struct {
	Op  Op
	Dst Operand
	Src Operand
}

// EncodedSize returns the number of bytes the instruction encodes to.
func (in Instruction) EncodedSize() int {
	return EncodedSize(in.Op, in.Dst.Type, in.Src.Type)
}

// Mode returns the instruction's operand-mode byte.
func (in Instruction) Mode() uint8 {
	return Mode(in.Dst.Type, in.Src.Type)
}

// Append encodes the instruction onto a code buffer. Operands are emitted
// in destination-then-source order.
func (in Instruction) Append(code []byte) []byte {
	code = append(code, uint8(in.Op))
	if in.Op.Bare() {
		return code
	}
	code = append(code, in.Mode())
	code = in.Dst.append(code)
	code = in.Src.append(code)
	return code
}

// String returns the assembly rendering of the instruction.
func (in Instruction) String() string {
	switch {
	case in.Op.Bare():
		return in.Op.String()
	case in.Dst.Type == OT_NONE:
		return fmt.Sprintf("%v %v", in.Op, in.Src)
	default:
		return fmt.Sprintf("%v %v, %v", in.Op, in.Dst, in.Src)
	}
}

// decodeOperand reads one operand payload of the given type from code.
func decodeOperand(ot OperandType, code []byte) (o Operand, n int, err error) {
	o.Type = ot
	switch ot {
	case OT_NONE:
	case OT_REG:
		if len(code) < 1 {
			err = ErrShortCode
			return
		}
		o.Reg = Register(code[0])
		n = 1
	case OT_IMM, OT_MEM:
		if len(code) < 4 {
			err = ErrShortCode
			return
		}
		o.Value = binary.LittleEndian.Uint32(code)
		n = 4
	default:
		err = ErrBadOperand
	}
	return
}

// Decode reads one instruction from the front of a code buffer and returns
// it together with the number of bytes consumed. Decode performs no shape
// validation beyond operand-type nibbles; it is the listing/disassembly
// decoder, not the executing one.
func Decode(code []byte) (in Instruction, n int, err error) {
	if len(code) < 1 {
		err = ErrShortCode
		return
	}

	in.Op = Op(code[0])
	n = 1
	if !in.Op.Valid() {
		err = ErrBadOpcode
		return
	}
	if in.Op.Bare() {
		return
	}

	if len(code) < 2 {
		err = ErrShortCode
		return
	}
	dst, src := ModeDecode(code[1])
	n = 2

	var used int
	in.Dst, used, err = decodeOperand(dst, code[n:])
	if err != nil {
		return
	}
	n += used

	in.Src, used, err = decodeOperand(src, code[n:])
	if err != nil {
		return
	}
	n += used

	return
}
