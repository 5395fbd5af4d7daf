package asm

import (
	"errors"

	"github.com/ezrec/bytecraft/translate"
)

var f = translate.From

var (
	ErrBadSection   = errors.New(f("content outside of any section"))
	ErrOperandCount = errors.New(f("wrong operand count"))
	ErrBranchTarget = errors.New(f("branch target cannot be [mem]"))
	ErrCmpLhs       = errors.New(f("cmp lhs must be a register"))
	ErrMovDst       = errors.New(f("mov dst must be a register or [mem]"))
	ErrMovMemMem    = errors.New(f("mov [mem],[mem] not allowed"))
	ErrArithDst     = errors.New(f("arith dst must be a register"))
	ErrEmptyLabel   = errors.New(f("empty label"))
	ErrMalformedDB  = errors.New(f("malformed DB declaration"))
	ErrBadNumber    = errors.New(f("not a number"))
	ErrEquSyntax    = errors.New(f(".equ syntax"))
)

// ErrSyntax pins an assembly error to its one-based source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrUnknownOpcode string

func (err ErrUnknownOpcode) Error() string {
	return f("unknown opcode '%v'", string(err))
}

type ErrUnknownSymbol string

func (err ErrUnknownSymbol) Error() string {
	return f("unknown symbol '%v'", string(err))
}

type ErrDuplicateLabel string

func (err ErrDuplicateLabel) Error() string {
	return f("duplicate label '%v'", string(err))
}

type ErrDuplicateData string

func (err ErrDuplicateData) Error() string {
	return f("duplicate DB name '%v'", string(err))
}

type ErrDuplicateEquate string

func (err ErrDuplicateEquate) Error() string {
	return f("duplicate equate '%v'", string(err))
}

type ErrExpression string

func (err ErrExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
