package bvm

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleModule() *Module {
	mod := NewModule([]byte{0x01, 0x12, 0x02, 0xEF, 0xBE, 0xAD, 0xDE, 0x0B}, 4)
	mod.EntryPoint = 0
	return mod
}

func TestSaveLoadRoundTrip(t *testing.T) {
	assert := assert.New(t)

	mod := sampleModule()

	var buf bytes.Buffer
	assert.NoError(Save(&buf, mod))

	loaded, err := Load(&buf)
	assert.NoError(err)
	assert.Equal(mod.EntryPoint, loaded.EntryPoint)
	assert.Equal(mod.Code, loaded.Code)
	assert.Equal(mod.Data, loaded.Data)
}

func TestSaveLayout(t *testing.T) {
	assert := assert.New(t)

	mod := &Module{EntryPoint: 2, Code: []byte{0xAA, 0xBB}, Data: []byte{0, 0, 0}}

	var buf bytes.Buffer
	assert.NoError(Save(&buf, mod))

	expected := []byte{
		'B', 'V', 'M', 0,
		2, 0, 0, 0, // entry_point
		2, 0, 0, 0, // code_size
		3, 0, 0, 0, // data_size
		0xAA, 0xBB,
		0, 0, 0,
	}
	assert.Equal(expected, buf.Bytes())
}

func TestLoadBadMagic(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(bytes.NewReader([]byte("XXXXrest of the file")))
	assert.ErrorIs(err, ErrBadMagic)

	// a short file cannot prove its magic either
	_, err = Load(bytes.NewReader([]byte("BV")))
	assert.ErrorIs(err, ErrBadMagic)

	_, err = Load(bytes.NewReader(nil))
	assert.ErrorIs(err, ErrBadMagic)
}

func TestLoadTruncatedHeader(t *testing.T) {
	assert := assert.New(t)

	_, err := Load(bytes.NewReader([]byte{'B', 'V', 'M', 0, 1, 2, 3}))
	assert.ErrorIs(err, ErrTruncatedHeader)
}

func TestLoadTruncatedPayload(t *testing.T) {
	assert := assert.New(t)

	// header declares 8 code bytes, file carries 2
	input := []byte{
		'B', 'V', 'M', 0,
		0, 0, 0, 0,
		8, 0, 0, 0,
		0, 0, 0, 0,
		0xAA, 0xBB,
	}
	_, err := Load(bytes.NewReader(input))
	assert.ErrorIs(err, ErrTruncatedPayload)

	// code complete, data short
	input = []byte{
		'B', 'V', 'M', 0,
		0, 0, 0, 0,
		1, 0, 0, 0,
		4, 0, 0, 0,
		0xAA,
		0, 0,
	}
	_, err = Load(bytes.NewReader(input))
	assert.ErrorIs(err, ErrTruncatedPayload)
}

func TestLoadTrailingBytes(t *testing.T) {
	assert := assert.New(t)

	mod := sampleModule()

	var buf bytes.Buffer
	assert.NoError(Save(&buf, mod))
	buf.Write([]byte("trailing garbage"))

	loaded, err := Load(&buf)
	assert.NoError(err)
	assert.Equal(mod.Code, loaded.Code)
	assert.Equal(mod.Data, loaded.Data)
}

func TestSaveLoadFile(t *testing.T) {
	assert := assert.New(t)

	path := filepath.Join(t.TempDir(), "sample.bvm")

	mod := sampleModule()
	assert.NoError(SaveFile(path, mod))

	loaded, err := LoadFile(path)
	assert.NoError(err)
	assert.Equal(mod.EntryPoint, loaded.EntryPoint)
	assert.Equal(mod.Code, loaded.Code)
	assert.Equal(mod.Data, loaded.Data)

	_, err = LoadFile(filepath.Join(t.TempDir(), "does-not-exist.bvm"))
	assert.Error(err)
}

func TestImage(t *testing.T) {
	assert := assert.New(t)

	mod := &Module{Code: []byte{1, 2}, Data: []byte{0, 0, 0}}
	assert.Equal([]byte{1, 2, 0, 0, 0}, mod.Image())

	empty := &Module{}
	assert.Equal(0, len(empty.Image()))
}
