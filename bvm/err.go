package bvm

import (
	"errors"

	"github.com/ezrec/bytecraft/translate"
)

var f = translate.From

var (
	ErrBadMagic         = errors.New(f("bad magic"))
	ErrTruncatedHeader  = errors.New(f("truncated header"))
	ErrTruncatedPayload = errors.New(f("truncated payload"))
)
