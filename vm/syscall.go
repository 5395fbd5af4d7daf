package vm

import (
	"io"

	"github.com/ezrec/bytecraft/isa"
)

// syscall dispatches on the syscall ID in r1. r1 carries the return value
// on exit.
func (vm *VM) syscall() {
	switch isa.SysId(vm.registers[isa.R1]) {
	case isa.SC_EXIT:
		vm.running = false

	case isa.SC_WRITE:
		fd := vm.registers[isa.R2]
		buf := vm.registers[isa.R3]
		count := vm.registers[isa.R4]

		if vm.oobRead(buf, count) {
			return
		}

		out := vm.Stdout
		if fd == 2 {
			out = vm.Stderr
		}
		out.Write(vm.memory[buf : buf+count])
		vm.registers[isa.R1] = count

	case isa.SC_READ:
		fd := vm.registers[isa.R2]
		buf := vm.registers[isa.R3]
		count := vm.registers[isa.R4]

		if vm.oobWrite(buf, count) {
			return
		}

		n := 0
		if fd == 0 {
			// Short reads stop at EOF; the byte count read so far is
			// the return value.
			n, _ = io.ReadFull(vm.Stdin, vm.memory[buf:buf+count])
		}
		vm.registers[isa.R1] = uint32(n)

	case isa.SC_OPEN:
		vm.registers[isa.R1] = 0xFFFFFFFF

	default:
		vm.fault(isa.F_BAD_INSTR)
	}
}
