package asm

import (
	"bufio"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ezrec/bytecraft/bvm"
	"github.com/ezrec/bytecraft/isa"
)

type section int

const (
	sectionNone = section(iota)
	sectionMain
	sectionData
)

// sourceLine is a preprocessed source line with its one-based line number.
type sourceLine struct {
	no   int
	text string
}

type dataDecl struct {
	name string
	size uint32
}

// Assembler is a two-pass assembler for the ByteCraft instruction set.
// The first pass sizes every instruction and captures symbols; the second
// pass emits code with all symbols resolved.
type Assembler struct {
	Verbose bool // If set, logs the emitted listing.

	Labels  map[string]uint32 // Code labels, bound to code offsets.
	Data    map[string]uint32 // Data names, bound to absolute addresses.
	Equates map[string]uint32 // Equates from .equ directives.

	lines     []sourceLine
	dataDecls []dataDecl
	codeSize  uint32
	dataSize  uint32
}

// registerMap maps register names (lowercased) to register indexes.
var registerMap = map[string]isa.Register{
	"r1": isa.R1,
	"r2": isa.R2,
	"r3": isa.R3,
	"r4": isa.R4,
	"r5": isa.R5,
	"r6": isa.R6,
	"r7": isa.R7,
	"r8": isa.R8,
	"ip": isa.IP,
	"rf": isa.RF,
	"rs": isa.RS,
}

// opMap maps mnemonics (lowercased) to opcodes.
var opMap = map[string]isa.Op{
	"nop":     isa.OP_NOP,
	"mov":     isa.OP_MOV,
	"add":     isa.OP_ADD,
	"sub":     isa.OP_SUB,
	"xor":     isa.OP_XOR,
	"cmp":     isa.OP_CMP,
	"jmp":     isa.OP_JMP,
	"jeq":     isa.OP_JEQ,
	"jneq":    isa.OP_JNEQ,
	"jla":     isa.OP_JLA,
	"jle":     isa.OP_JLE,
	"syscall": isa.OP_SYSCALL,
}

func registerIndex(token string) (reg isa.Register, ok bool) {
	reg, ok = registerMap[strings.ToLower(token)]
	return
}

// memInner strips the brackets from a [mem] operand token.
func memInner(token string) (inner string, ok bool) {
	if len(token) >= 2 && token[0] == '[' && token[len(token)-1] == ']' {
		return strings.TrimSpace(token[1 : len(token)-1]), true
	}
	return
}

// operandType classifies an operand token: register name, then bracketed
// memory, then immediate.
func operandType(token string) isa.OperandType {
	if _, ok := registerIndex(token); ok {
		return isa.OT_REG
	}
	if _, ok := memInner(token); ok {
		return isa.OT_MEM
	}
	return isa.OT_IMM
}

// parseNumber parses a decimal or 0x-prefixed hex literal, truncated to
// 32 bits.
func parseNumber(token string) (value uint32, ok bool) {
	if len(token) > 2 && (strings.HasPrefix(token, "0x") || strings.HasPrefix(token, "0X")) {
		v64, err := strconv.ParseUint(token[2:], 16, 64)
		if err != nil {
			return
		}
		return uint32(v64), true
	}
	v64, err := strconv.ParseInt(token, 10, 64)
	if err != nil {
		return
	}
	return uint32(v64), true
}

func splitOperands(tail string) (operands []string) {
	if tail == "" {
		return
	}
	operands = strings.Split(tail, ",")
	for n := range operands {
		operands[n] = strings.TrimSpace(operands[n])
	}
	if operands[len(operands)-1] == "" {
		operands = operands[:len(operands)-1]
	}
	return
}

// statement is one parsed instruction line: mnemonic plus classified
// operand tokens.
type statement struct {
	op       isa.Op
	operands []string
	types    []isa.OperandType
}

// parseStatement splits an instruction line and validates its operand shape.
// Shape errors surface here so the sizing pass can rely on a well-formed
// statement.
func parseStatement(text string) (st statement, err error) {
	opToken := text
	var tail string
	if sp := strings.IndexAny(text, " \t"); sp >= 0 {
		opToken = text[:sp]
		tail = strings.TrimSpace(text[sp+1:])
	}

	op, ok := opMap[strings.ToLower(opToken)]
	if !ok {
		err = ErrUnknownOpcode(opToken)
		return
	}
	st.op = op

	st.operands = splitOperands(tail)
	for _, operand := range st.operands {
		st.types = append(st.types, operandType(operand))
	}

	switch {
	case op.Bare():
		if len(st.operands) != 0 {
			err = ErrOperandCount
		}
	case op.Branch():
		if len(st.operands) != 1 {
			err = ErrOperandCount
			return
		}
		if st.types[0] == isa.OT_MEM {
			err = ErrBranchTarget
		}
	default:
		if len(st.operands) != 2 {
			err = ErrOperandCount
			return
		}
		dst, src := st.types[0], st.types[1]
		switch op {
		case isa.OP_CMP:
			if dst != isa.OT_REG {
				err = ErrCmpLhs
			}
		case isa.OP_MOV:
			if dst != isa.OT_REG && dst != isa.OT_MEM {
				err = ErrMovDst
			} else if dst == isa.OT_MEM && src == isa.OT_MEM {
				err = ErrMovMemMem
			}
		default:
			if dst != isa.OT_REG {
				err = ErrArithDst
			}
		}
	}

	return
}

// encodedSize returns the byte size the statement encodes to.
func (st statement) encodedSize() int {
	switch {
	case st.op.Bare():
		return isa.EncodedSize(st.op, isa.OT_NONE, isa.OT_NONE)
	case st.op.Branch():
		return isa.EncodedSize(st.op, isa.OT_NONE, st.types[0])
	default:
		return isa.EncodedSize(st.op, st.types[0], st.types[1])
	}
}

// Assemble runs both passes over the source text and returns the module.
// The module's entry point is the start of the code region.
func (asm *Assembler) Assemble(input io.Reader) (mod *bvm.Module, err error) {
	asm.Labels = make(map[string]uint32)
	asm.Data = make(map[string]uint32)
	asm.Equates = make(map[string]uint32)
	asm.lines = asm.lines[:0]
	asm.dataDecls = asm.dataDecls[:0]
	asm.codeSize = 0
	asm.dataSize = 0

	if err = asm.scan(input); err != nil {
		return
	}
	if err = asm.sizePass(); err != nil {
		return
	}
	asm.layout()

	code, err := asm.emitPass()
	if err != nil {
		return
	}

	mod = bvm.NewModule(code, asm.dataSize)
	return
}

// AssembleFile reads a source file and assembles it.
func (asm *Assembler) AssembleFile(path string) (mod *bvm.Module, err error) {
	in, err := os.Open(path)
	if err != nil {
		return
	}
	defer in.Close()

	return asm.Assemble(in)
}

// scan preprocesses the input: comments stripped at the first ';' or '#',
// whitespace trimmed, blank lines dropped.
func (asm *Assembler) scan(input io.Reader) (err error) {
	scanner := bufio.NewScanner(input)

	lineno := 0
	for scanner.Scan() {
		lineno++
		text := scanner.Text()
		if cut := strings.IndexAny(text, ";#"); cut >= 0 {
			text = text[:cut]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		asm.lines = append(asm.lines, sourceLine{no: lineno, text: text})
	}

	return scanner.Err()
}

func (asm *Assembler) fail(line *sourceLine, err error) error {
	return &ErrSyntax{LineNo: line.no, Line: line.text, Err: err}
}

// sizePass walks the lines in order, capturing labels, equates, and data
// declarations, and advancing the code program counter by the encoded size
// of each instruction.
func (asm *Assembler) sizePass() (err error) {
	current := sectionNone
	codePC := uint32(0)

	for n := range asm.lines {
		line := &asm.lines[n]

		// $() expansion happens once, in source order, so earlier equates
		// are visible to later expressions. The emit pass reuses the
		// expanded text.
		line.text, err = asm.expand(line.text)
		if err != nil {
			return asm.fail(line, err)
		}

		switch line.text {
		case "_main:":
			current = sectionMain
			continue
		case "_data:":
			current = sectionData
			continue
		}

		switch current {
		case sectionMain:
			if fields := strings.Fields(line.text); fields[0] == ".equ" {
				if err = asm.equate(fields); err != nil {
					return asm.fail(line, err)
				}
				continue
			}
			if strings.HasSuffix(line.text, ":") {
				label := strings.TrimSpace(strings.TrimSuffix(line.text, ":"))
				if label == "" {
					return asm.fail(line, ErrEmptyLabel)
				}
				if _, ok := asm.Labels[label]; ok {
					return asm.fail(line, ErrDuplicateLabel(label))
				}
				asm.Labels[label] = codePC
				continue
			}
			st, sterr := parseStatement(line.text)
			if sterr != nil {
				return asm.fail(line, sterr)
			}
			codePC += uint32(st.encodedSize())
		case sectionData:
			if err = asm.dataDecl(line.text); err != nil {
				return asm.fail(line, err)
			}
		default:
			return asm.fail(line, ErrBadSection)
		}
	}

	asm.codeSize = codePC
	return
}

// equate handles a ".equ NAME value" directive.
func (asm *Assembler) equate(fields []string) (err error) {
	if len(fields) != 3 {
		return ErrEquSyntax
	}
	name := fields[1]
	if _, ok := asm.Equates[name]; ok {
		return ErrDuplicateEquate(name)
	}
	value, ok := parseNumber(fields[2])
	if !ok {
		return ErrBadNumber
	}
	asm.Equates[name] = value
	return
}

// dataDecl handles a "DB name[size]" declaration.
func (asm *Assembler) dataDecl(text string) (err error) {
	if len(text) < 3 || !strings.EqualFold(text[:3], "db ") {
		return ErrMalformedDB
	}
	rest := strings.TrimSpace(text[3:])
	lb := strings.IndexByte(rest, '[')
	rb := strings.IndexByte(rest, ']')
	if lb < 0 || rb < 0 || rb <= lb+1 {
		return ErrMalformedDB
	}
	name := strings.TrimSpace(rest[:lb])
	if name == "" {
		return ErrMalformedDB
	}
	size, ok := parseNumber(strings.TrimSpace(rest[lb+1 : rb]))
	if !ok {
		return ErrBadNumber
	}
	if _, ok := asm.Data[name]; ok {
		return ErrDuplicateData(name)
	}

	// Placeholder address; layout() binds the real one once the final
	// code size is known.
	asm.Data[name] = 0
	asm.dataDecls = append(asm.dataDecls, dataDecl{name: name, size: size})
	return
}

// layout binds data names to absolute addresses in declaration order.
func (asm *Assembler) layout() {
	offset := asm.codeSize
	total := uint32(0)
	for _, decl := range asm.dataDecls {
		asm.Data[decl.name] = offset
		offset += decl.size
		total += decl.size
	}
	asm.dataSize = total
}

// emitPass walks the lines again and emits instruction bytes, resolving
// every symbolic operand.
func (asm *Assembler) emitPass() (code []byte, err error) {
	current := sectionNone
	code = make([]byte, 0, asm.codeSize)

	for n := range asm.lines {
		line := &asm.lines[n]

		switch line.text {
		case "_main:":
			current = sectionMain
			continue
		case "_data:":
			current = sectionData
			continue
		}
		if current != sectionMain {
			continue
		}
		if strings.HasSuffix(line.text, ":") {
			continue
		}
		if fields := strings.Fields(line.text); fields[0] == ".equ" {
			continue
		}

		st, sterr := parseStatement(line.text)
		if sterr != nil {
			return nil, asm.fail(line, sterr)
		}

		instr, ierr := asm.encode(st)
		if ierr != nil {
			return nil, asm.fail(line, ierr)
		}

		if asm.Verbose {
			log.Printf("%04X: %v", len(code), instr)
		}

		code = instr.Append(code)
	}

	return
}

// encode resolves the statement's operand tokens into a final instruction.
func (asm *Assembler) encode(st statement) (instr isa.Instruction, err error) {
	instr.Op = st.op
	if st.op.Bare() {
		return
	}
	if st.op.Branch() {
		instr.Src, err = asm.operand(st.operands[0], st.types[0])
		return
	}

	instr.Dst, err = asm.operand(st.operands[0], st.types[0])
	if err != nil {
		return
	}
	instr.Src, err = asm.operand(st.operands[1], st.types[1])
	return
}

// operand builds one encoded operand from its token.
func (asm *Assembler) operand(token string, ot isa.OperandType) (o isa.Operand, err error) {
	o.Type = ot
	switch ot {
	case isa.OT_REG:
		o.Reg, _ = registerIndex(token)
	case isa.OT_MEM:
		inner, _ := memInner(token)
		o.Value, err = asm.resolve(inner)
	default:
		o.Value, err = asm.resolve(token)
	}
	return
}

// resolve maps an operand token to its 32-bit value: numeric literal first,
// then code label, then data name, then equate.
func (asm *Assembler) resolve(token string) (value uint32, err error) {
	if value, ok := parseNumber(token); ok {
		return value, nil
	}
	if value, ok := asm.Labels[token]; ok {
		return value, nil
	}
	if value, ok := asm.Data[token]; ok {
		return value, nil
	}
	if value, ok := asm.Equates[token]; ok {
		return value, nil
	}
	err = ErrUnknownSymbol(token)
	return
}
