package audio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSampleRate = 8000
	testChannels   = 1
	testBits       = 16
)

// writeTestWAV writes a PCM WAV with the given duration and returns its path.
func writeTestWAV(t *testing.T, dir, name string, seconds float64) string {
	t.Helper()

	blockAlign := testChannels * testBits / 8
	byteRate := testSampleRate * blockAlign

	n := int(float64(byteRate) * seconds)
	n -= n % blockAlign

	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 251)
	}

	fmtChunk := make([]byte, 0, 16)
	fmtChunk = binary.LittleEndian.AppendUint16(fmtChunk, 1) // PCM
	fmtChunk = binary.LittleEndian.AppendUint16(fmtChunk, testChannels)
	fmtChunk = binary.LittleEndian.AppendUint32(fmtChunk, testSampleRate)
	fmtChunk = binary.LittleEndian.AppendUint32(fmtChunk, uint32(byteRate))
	fmtChunk = binary.LittleEndian.AppendUint16(fmtChunk, uint16(blockAlign))
	fmtChunk = binary.LittleEndian.AppendUint16(fmtChunk, testBits)

	path := filepath.Join(dir, name)
	require.NoError(t, writeWAV(path, fmtChunk, data))
	return path
}

func TestIsWAV(t *testing.T) {
	dir := t.TempDir()

	wavPath := writeTestWAV(t, dir, "sound.wav", 0.5)
	assert.True(t, IsWAV(wavPath))

	txtPath := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txtPath, []byte("definitely not audio"), 0o644))
	assert.False(t, IsWAV(txtPath))

	assert.False(t, IsWAV(filepath.Join(dir, "missing.wav")))
}

func TestIsWAV_WrongExtensionButValidHeader(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "sound.bin", 0.1)
	assert.True(t, IsWAV(path), "sniffing goes by content, not extension")
}

func TestProbe(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "sound.wav", 2.0)

	info, err := Probe(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(1), info.Format.AudioFormat)
	assert.Equal(t, uint16(testChannels), info.Format.Channels)
	assert.Equal(t, uint32(testSampleRate), info.Format.SampleRate)
	assert.Equal(t, uint16(testBits), info.Format.BitsPerSample)
	assert.InDelta(t, 2.0, info.Duration().Seconds(), 0.01)
	assert.Len(t, info.FmtChunk, 16)
}

func TestProbe_InvalidFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content []byte
	}{
		{"empty", nil},
		{"truncated header", []byte("RIFF")},
		{"wrong magic", []byte("OGGS0000datadatadata")},
		{"riff without wave", append([]byte("RIFF"), []byte("0000JUNKmorejunkhere")...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name+".wav")
			require.NoError(t, os.WriteFile(path, tt.content, 0o644))

			_, err := Probe(path)
			assert.ErrorIs(t, err, ErrInvalidWAV)
		})
	}
}

func TestSplitWAV(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "long.wav", 2.5)

	outDir := t.TempDir()
	chunks, err := SplitWAV(path, outDir, time.Second)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "chunk_0000", chunks[0].ID)
	assert.Equal(t, "chunk_0001", chunks[1].ID)
	assert.Equal(t, "chunk_0002", chunks[2].ID)

	assert.InDelta(t, 0.0, chunks[0].Start.Seconds(), 0.01)
	assert.InDelta(t, 1.0, chunks[1].Start.Seconds(), 0.01)
	assert.InDelta(t, 2.0, chunks[2].Start.Seconds(), 0.01)

	assert.InDelta(t, 1.0, chunks[0].Duration.Seconds(), 0.1)
	assert.InDelta(t, 0.5, chunks[2].Duration.Seconds(), 0.1)

	source, err := Probe(path)
	require.NoError(t, err)

	var totalData uint32
	for _, chunk := range chunks {
		info, err := Probe(chunk.Path)
		require.NoError(t, err, "chunk %s must be a valid WAV", chunk.ID)
		assert.Equal(t, source.Format, info.Format, "chunk %s keeps the source format", chunk.ID)
		totalData += info.DataSize
	}
	assert.Equal(t, source.DataSize, totalData, "no audio lost across chunks")
}

func TestSplitWAV_ShortFileSingleChunk(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "short.wav", 0.25)

	chunks, err := SplitWAV(path, t.TempDir(), 0) // default 30s
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "chunk_0000", chunks[0].ID)
	assert.InDelta(t, 0.25, chunks[0].Duration.Seconds(), 0.01)
}

func TestSplitWAV_NotWAV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bogus.wav")
	require.NoError(t, os.WriteFile(path, []byte("nope"), 0o644))

	_, err := SplitWAV(path, t.TempDir(), time.Second)
	assert.ErrorIs(t, err, ErrInvalidWAV)
}
