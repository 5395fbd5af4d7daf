package asm

import (
	"regexp"
	"strconv"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Compile-time expressions are written $(expr) and may appear anywhere in an
// instruction line. Equates are visible inside the expression as predeclared
// integer variables.
var exprPattern = regexp.MustCompile(`\$\([^$]*\)`)

// expand replaces every $(...) in a line with its evaluated decimal value.
func (asm *Assembler) expand(line string) (out string, err error) {
	out = exprPattern.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.eval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
			return str
		}
		return strconv.FormatUint(uint64(value), 10)
	})
	return
}

// eval does a compile-time $(...) evaluation.
func (asm *Assembler) eval(expr string) (value uint32, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	env := starlark.StringDict{}
	for name, equ := range asm.Equates {
		env[name] = starlark.MakeInt64(int64(equ))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, env)
	if err != nil {
		err = ErrExpression(expr)
		return
	}

	rc, ok := dict["rc"]
	if !ok {
		err = ErrExpression(expr)
		return
	}
	rcInt, ok := rc.(starlark.Int)
	if !ok {
		err = ErrExpression(expr)
		return
	}
	rc64, ok := rcInt.Int64()
	if !ok {
		err = ErrExpression(expr)
		return
	}

	value = uint32(rc64)
	return
}
