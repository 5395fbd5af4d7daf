// Package asm implements the two-pass ByteCraft assembler.
//
// Source text is line oriented, with two sections: _main: for code and
// _data: for zero-filled DB declarations. The first pass sizes every
// instruction and captures code labels, data names, and equates; the
// second pass emits instruction bytes with every symbolic operand resolved
// to a 32-bit value. Compile-time $(...) expressions are evaluated with
// Starlark during preprocessing, with equates visible as variables.
package asm
