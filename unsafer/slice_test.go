package unsafer

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	a, b float32
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]uint16{}))

	in := []uint16{0x0102, 0x0304}
	out := SliceToBytes(in)
	require.Len(t, out, 4)
	assert.Equal(t, uint16(0x0102), binary.NativeEndian.Uint16(out[0:2]))
	assert.Equal(t, uint16(0x0304), binary.NativeEndian.Uint16(out[2:4]))

	pairs := []pair{{1, 2}, {3, 4}, {5, 6}}
	assert.Len(t, SliceToBytes(pairs), 24)
}

func TestStructToBytes(t *testing.T) {
	p := pair{a: 1, b: 2}
	assert.Len(t, StructToBytes(&p), 8)
}

func TestSliceBytesToUint32(t *testing.T) {
	code := make([]byte, 9)
	binary.NativeEndian.PutUint32(code[0:4], 0x07230203)
	binary.NativeEndian.PutUint32(code[4:8], 0x00010000)

	words := SliceBytesToUint32(code)
	assert.Equal(t, []uint32{0x07230203, 0x00010000}, words)
}
