package synthesis

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeWAV(t *testing.T) {
	samples := []float32{0, 0.5, -0.5, 1, -1, 2, -2}

	data := EncodeWAV(samples, 22050)
	require.Len(t, data, 44+len(samples)*2)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, "fmt ", string(data[12:16]))
	assert.Equal(t, "data", string(data[36:40]))

	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[22:24]), "mono")
	assert.Equal(t, uint32(22050), binary.LittleEndian.Uint32(data[24:28]), "sample rate")
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]), "bits per sample")
	assert.Equal(t, uint32(len(samples)*2), binary.LittleEndian.Uint32(data[40:44]), "data size")

	// Samples beyond [-1, 1] are clamped
	last := int16(binary.LittleEndian.Uint16(data[len(data)-2:]))
	assert.Equal(t, int16(-32767), last)
}
