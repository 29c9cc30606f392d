package retroarch

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StateScope/emulator"
)

func TestDecodeReadCoreMemory(t *testing.T) {
	resp := []byte("READ_CORE_MEMORY 2000000 de AD be EF")
	dst := make([]byte, 4)
	require.NoError(t, decodeReadCoreMemory(resp, dst))
	assert.Equal(t, []byte{0xDE, 0xAD, 0xBE, 0xEF}, dst)
}

func TestDecodeReadCoreMemoryGameNotLoaded(t *testing.T) {
	resp := []byte("READ_CORE_MEMORY 2000000 -1")
	err := decodeReadCoreMemory(resp, make([]byte, 4))
	assert.ErrorIs(t, err, emulator.ErrGameNotLoaded)
}

func TestDecodeReadCoreMemoryTruncated(t *testing.T) {
	resp := []byte("READ_CORE_MEMORY 2000000 DE AD")
	err := decodeReadCoreMemory(resp, make([]byte, 4))
	assert.Error(t, err)
}

func TestDecodeReadCoreMemoryBadHex(t *testing.T) {
	resp := []byte("READ_CORE_MEMORY 2000000 ZZ")
	err := decodeReadCoreMemory(resp, make([]byte, 1))
	assert.Error(t, err)
}

func TestAppendHexUpper(t *testing.T) {
	tests := []struct {
		v    uint64
		want string
	}{
		{0, "0"},
		{0xF, "F"},
		{0x2000000, "2000000"},
		{0x3007FFC, "3007FFC"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, string(appendHexUpper(nil, tc.v)))
	}
}

func TestBuildReadCoreMemoryCmd(t *testing.T) {
	c := NewClient(zerolog.Nop(), "localhost", "55355")
	cmd := c.buildReadCoreMemoryCmd(0x02000000, 1024)
	assert.Equal(t, "READ_CORE_MEMORY 2000000 1024", string(cmd))
}
