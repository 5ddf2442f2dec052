package shaders

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedSPIRV(t *testing.T) {
	const spirvMagic = 0x07230203

	for _, name := range []string{"vert.spv", "frag.spv"} {
		t.Run(name, func(t *testing.T) {
			code, err := FS.ReadFile(name)
			require.NoError(t, err)
			require.NotEmpty(t, code)
			assert.Zero(t, len(code)%4, "SPIR-V is a stream of 32 bit words")
			assert.Equal(t, uint32(spirvMagic), binary.LittleEndian.Uint32(code))
		})
	}
}
