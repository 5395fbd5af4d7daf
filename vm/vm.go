// Package vm implements the ByteCraft virtual machine.
//
// The machine interprets a flat memory image: the code region at the front,
// the data region immediately after. Faults are architectural, not host
// errors: fetch, decode, and bounds failures set the matching rF flag bit
// and move the machine out of the running state. Run returns normally after
// any halt cause; callers inspect registers and flags post-mortem.
package vm

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ezrec/bytecraft/bvm"
	"github.com/ezrec/bytecraft/isa"
	"github.com/ezrec/bytecraft/translate"
)

var f = translate.From

// VM is the ByteCraft interpreter state.
type VM struct {
	Verbose bool // If set, logs a trace line after every instruction.

	Stdin  io.Reader // Source for the read syscall. Defaults to os.Stdin.
	Stdout io.Writer // Sink for the write syscall. Defaults to os.Stdout.
	Stderr io.Writer // Sink for fd 2 writes. Defaults to os.Stderr.

	memory    []byte
	codeSize  uint32
	dataSize  uint32
	registers [isa.REG_COUNT]uint32
	running   bool
}

// New creates a VM over a flat memory image holding codeSize code bytes
// followed by dataSize data bytes. All registers start at zero except IP,
// which starts at the entry point.
func New(memory []byte, entryPoint, codeSize, dataSize uint32) (vm *VM) {
	vm = &VM{
		Stdin:    os.Stdin,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		memory:   memory,
		codeSize: codeSize,
		dataSize: dataSize,
		running:  true,
	}
	vm.registers[isa.IP] = entryPoint

	return
}

// NewFromModule creates a VM executing a loaded module. The module's byte
// regions are consumed into the flat image.
func NewFromModule(mod *bvm.Module) *VM {
	return New(mod.Image(), mod.EntryPoint,
		uint32(len(mod.Code)), uint32(len(mod.Data)))
}

// Running reports whether the machine is still in the running state.
func (vm *VM) Running() bool {
	return vm.running
}

// Register returns the current value of a register. Unknown indexes read
// as zero.
func (vm *VM) Register(reg isa.Register) uint32 {
	if !reg.Valid() {
		return 0
	}
	return vm.registers[reg]
}

// SetRegister writes a register. rS keeps only bit 0.
func (vm *VM) SetRegister(reg isa.Register, value uint32) {
	if !reg.Valid() {
		return
	}
	if reg == isa.RS {
		value &= 1
	}
	vm.registers[reg] = value
}

// Flags returns the current rF value.
func (vm *VM) Flags() uint32 {
	return vm.registers[isa.RF]
}

// Faulted reports whether a fault flag stopped the machine.
func (vm *VM) Faulted() bool {
	return vm.registers[isa.RF]&isa.F_FAULTS != 0
}

// HaltReason summarizes why the machine stopped. The architectural truth
// stays in the rF flag bits; this is a caller-facing convenience.
func (vm *VM) HaltReason() string {
	rf := vm.registers[isa.RF]
	switch {
	case vm.running:
		return f("running")
	case rf&isa.F_BAD_INSTR != 0:
		return f("bad instruction")
	case rf&isa.F_IP_OOB != 0:
		return f("instruction fetch out of bounds")
	case rf&isa.F_READ_OOB != 0:
		return f("memory read out of bounds")
	case rf&isa.F_WRITE_OOB != 0:
		return f("memory write out of bounds")
	default:
		return f("clean exit")
	}
}

// fault sets a fault flag and halts the machine.
func (vm *VM) fault(flag uint32) {
	vm.registers[isa.RF] |= flag
	vm.running = false
}

// fetch8 reads the next code byte at IP. IP must stay inside the code
// region for fetch.
func (vm *VM) fetch8() uint8 {
	if vm.registers[isa.IP] >= vm.codeSize {
		vm.fault(isa.F_IP_OOB)
		return 0
	}
	value := vm.memory[vm.registers[isa.IP]]
	vm.registers[isa.IP]++
	return value
}

// fetch32 reads the next four code bytes at IP, little-endian.
func (vm *VM) fetch32() uint32 {
	if vm.registers[isa.IP]+4 > vm.codeSize {
		vm.fault(isa.F_IP_OOB)
		return 0
	}
	value := binary.LittleEndian.Uint32(vm.memory[vm.registers[isa.IP]:])
	vm.registers[isa.IP] += 4
	return value
}

// oobRead checks a data read range, faulting with READ_OOB when it leaves
// the memory image.
func (vm *VM) oobRead(addr, count uint32) bool {
	size := uint32(len(vm.memory))
	oob := addr > size || count > size || addr+count > size
	if oob {
		vm.fault(isa.F_READ_OOB)
	}
	return oob
}

// oobWrite checks a data write range, faulting with WRITE_OOB when it
// leaves the memory image.
func (vm *VM) oobWrite(addr, count uint32) bool {
	size := uint32(len(vm.memory))
	oob := addr > size || count > size || addr+count > size
	if oob {
		vm.fault(isa.F_WRITE_OOB)
	}
	return oob
}

// load32 reads a 32-bit little-endian value from absolute memory.
func (vm *VM) load32(addr uint32) uint32 {
	if vm.oobRead(addr, 4) {
		return 0
	}
	return binary.LittleEndian.Uint32(vm.memory[addr:])
}

// store32 writes a 32-bit little-endian value to absolute memory.
func (vm *VM) store32(addr, value uint32) {
	if vm.oobWrite(addr, 4) {
		return
	}
	binary.LittleEndian.PutUint32(vm.memory[addr:], value)
}

// fetchReg fetches a register-index operand byte.
func (vm *VM) fetchReg() (reg isa.Register, ok bool) {
	reg = isa.Register(vm.fetch8())
	if !vm.running {
		return
	}
	if !reg.Valid() {
		vm.fault(isa.F_BAD_INSTR)
		return
	}
	ok = true
	return
}

// sourceValue fetches and evaluates a REG, IMM, or MEM source operand.
func (vm *VM) sourceValue(src isa.OperandType) (value uint32, ok bool) {
	switch src {
	case isa.OT_REG:
		reg, rok := vm.fetchReg()
		if !rok {
			return
		}
		value = vm.registers[reg]
	case isa.OT_IMM:
		value = vm.fetch32()
		if !vm.running {
			return
		}
	case isa.OT_MEM:
		addr := vm.fetch32()
		if !vm.running {
			return
		}
		value = vm.load32(addr)
		if !vm.running {
			return
		}
	default:
		vm.fault(isa.F_BAD_INSTR)
		return
	}

	ok = true
	return
}

// Step executes a single instruction at IP. Halted is terminal: stepping a
// halted machine does nothing.
func (vm *VM) Step() {
	if !vm.running {
		return
	}
	if vm.registers[isa.IP] >= vm.codeSize {
		vm.fault(isa.F_IP_OOB)
		return
	}

	ipBefore := vm.registers[isa.IP]
	op := isa.Op(vm.fetch8())

	switch op {
	case isa.OP_NOP:

	case isa.OP_MOV:
		vm.stepMov()

	case isa.OP_ADD, isa.OP_SUB, isa.OP_XOR:
		vm.stepArith(op)

	case isa.OP_CMP:
		vm.stepCmp()

	case isa.OP_JMP, isa.OP_JEQ, isa.OP_JNEQ, isa.OP_JLA, isa.OP_JLE:
		vm.stepBranch(op)

	case isa.OP_SYSCALL:
		vm.syscall()

	default:
		vm.fault(isa.F_BAD_INSTR)
	}

	if vm.Verbose {
		log.Print(vm.traceLine(ipBefore, op))
	}
}

// Run steps the machine until it halts.
func (vm *VM) Run() {
	for vm.running {
		vm.Step()
	}
}

func (vm *VM) stepMov() {
	dst, src := isa.ModeDecode(vm.fetch8())
	if !vm.running {
		return
	}

	switch dst {
	case isa.OT_REG:
		reg, ok := vm.fetchReg()
		if !ok {
			return
		}
		value, ok := vm.sourceValue(src)
		if !ok {
			return
		}
		vm.SetRegister(reg, value)
	case isa.OT_MEM:
		addr := vm.fetch32()
		if !vm.running {
			return
		}
		var value uint32
		switch src {
		case isa.OT_REG:
			reg, ok := vm.fetchReg()
			if !ok {
				return
			}
			value = vm.registers[reg]
		case isa.OT_IMM:
			value = vm.fetch32()
			if !vm.running {
				return
			}
		default:
			// mov [mem],[mem] has no encoding
			vm.fault(isa.F_BAD_INSTR)
			return
		}
		vm.store32(addr, value)
	default:
		vm.fault(isa.F_BAD_INSTR)
	}
}

func (vm *VM) stepArith(op isa.Op) {
	dst, src := isa.ModeDecode(vm.fetch8())
	if !vm.running {
		return
	}
	if dst != isa.OT_REG {
		vm.fault(isa.F_BAD_INSTR)
		return
	}

	reg, ok := vm.fetchReg()
	if !ok {
		return
	}
	rhs, ok := vm.sourceValue(src)
	if !ok {
		return
	}

	lhs := vm.registers[reg]
	var out uint32
	switch op {
	case isa.OP_ADD:
		out = lhs + rhs
	case isa.OP_SUB:
		out = lhs - rhs
	default:
		out = lhs ^ rhs
	}
	vm.SetRegister(reg, out)
}

func (vm *VM) stepCmp() {
	dst, src := isa.ModeDecode(vm.fetch8())
	if !vm.running {
		return
	}
	if dst != isa.OT_REG {
		vm.fault(isa.F_BAD_INSTR)
		return
	}

	reg, ok := vm.fetchReg()
	if !ok {
		return
	}
	rhs, ok := vm.sourceValue(src)
	if !ok {
		return
	}

	vm.setCompareFlags(vm.registers[reg], rhs)
}

// setCompareFlags clears EQ/GT/LT and sets exactly one of them, comparing
// signed when rS bit 0 is set. Higher rF bits are preserved.
func (vm *VM) setCompareFlags(lhs, rhs uint32) {
	rf := vm.registers[isa.RF] &^ (isa.F_EQ | isa.F_GT | isa.F_LT)
	signed := vm.registers[isa.RS]&1 != 0

	switch {
	case lhs == rhs:
		rf |= isa.F_EQ
	case signed && int32(lhs) > int32(rhs), !signed && lhs > rhs:
		rf |= isa.F_GT
	default:
		rf |= isa.F_LT
	}

	vm.registers[isa.RF] = rf
}

func (vm *VM) stepBranch(op isa.Op) {
	_, src := isa.ModeDecode(vm.fetch8())
	if !vm.running {
		return
	}

	var target uint32
	switch src {
	case isa.OT_IMM:
		target = vm.fetch32()
		if !vm.running {
			return
		}
	case isa.OT_REG:
		reg, ok := vm.fetchReg()
		if !ok {
			return
		}
		target = vm.registers[reg]
	default:
		vm.fault(isa.F_BAD_INSTR)
		return
	}

	rf := vm.registers[isa.RF]
	var take bool
	switch op {
	case isa.OP_JMP:
		take = true
	case isa.OP_JEQ:
		take = rf&isa.F_EQ != 0
	case isa.OP_JNEQ:
		take = rf&isa.F_EQ == 0
	case isa.OP_JLA:
		take = rf&isa.F_GT != 0
	case isa.OP_JLE:
		take = rf&(isa.F_LT|isa.F_EQ) != 0
	}

	if take {
		vm.registers[isa.RF] |= isa.F_TEST_TRUE
		vm.registers[isa.IP] = target
	} else {
		vm.registers[isa.RF] &^= isa.F_TEST_TRUE
	}
}

// traceLine renders the post-instruction register and flag snapshot.
func (vm *VM) traceLine(ipBefore uint32, op isa.Op) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "IP:%08X OP:%02X |", ipBefore, uint8(op))
	for reg := isa.R1; reg <= isa.R8; reg++ {
		fmt.Fprintf(&sb, " %v:%08X", reg, vm.registers[reg])
	}
	fmt.Fprintf(&sb, " IP:%08X rF:%08X rS:%d [%v]",
		vm.registers[isa.IP], vm.registers[isa.RF], vm.registers[isa.RS]&1,
		strings.TrimSpace(isa.FlagString(vm.registers[isa.RF])))

	return sb.String()
}
