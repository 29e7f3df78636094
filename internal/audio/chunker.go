package audio

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// DefaultChunkLength is the chunk duration used when the caller does not
// pick one.
const DefaultChunkLength = 30 * time.Second

// chunkTolerance is the acceptable difference between a chunk's requested
// and actual duration. The final chunk is exempt.
const chunkTolerance = 100 * time.Millisecond

// Chunk is one fixed-duration slice of a source WAV file, written out as a
// standalone WAV.
type Chunk struct {
	ID       string
	Path     string
	Start    time.Duration
	Duration time.Duration
}

// SplitWAV slices the WAV at path into chunkLen-long pieces under outDir and
// returns them in playback order. Chunk boundaries are frame aligned so each
// piece remains a valid PCM stream.
func SplitWAV(path, outDir string, chunkLen time.Duration) ([]Chunk, error) {
	if chunkLen <= 0 {
		chunkLen = DefaultChunkLength
	}

	info, err := Probe(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	if _, err := f.Seek(info.DataOffset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek wav data: %w", err)
	}

	blockAlign := int64(info.Format.BlockAlign)
	bytesPerChunk := int64(float64(info.Format.ByteRate) * chunkLen.Seconds())
	bytesPerChunk -= bytesPerChunk % blockAlign
	if bytesPerChunk <= 0 {
		bytesPerChunk = blockAlign
	}

	var (
		chunks    []Chunk
		remaining = int64(info.DataSize)
		offset    int64
		index     int
	)

	for remaining > 0 {
		size := bytesPerChunk
		if size > remaining {
			size = remaining
		}

		data := make([]byte, size)
		if _, err := io.ReadFull(f, data); err != nil {
			return nil, fmt.Errorf("read wav data: %w", err)
		}

		id := fmt.Sprintf("chunk_%04d", index)
		chunkPath := filepath.Join(outDir, id+".wav")
		if err := writeWAV(chunkPath, info.FmtChunk, data); err != nil {
			return nil, err
		}

		start := byteOffsetToDuration(offset, info.Format)
		actual := byteOffsetToDuration(size, info.Format)

		last := remaining == size
		if !last && durationDelta(actual, chunkLen) > chunkTolerance {
			return nil, fmt.Errorf("%w: chunk %s is %s, expected %s", ErrInvalidWAV, id, actual, chunkLen)
		}

		chunks = append(chunks, Chunk{
			ID:       id,
			Path:     chunkPath,
			Start:    start,
			Duration: actual,
		})

		offset += size
		remaining -= size
		index++
	}

	return chunks, nil
}

func byteOffsetToDuration(bytes int64, format Format) time.Duration {
	if format.ByteRate == 0 {
		return 0
	}
	return time.Duration(float64(bytes) / float64(format.ByteRate) * float64(time.Second))
}

func durationDelta(a, b time.Duration) time.Duration {
	if a > b {
		return a - b
	}
	return b - a
}

// writeWAV emits a minimal RIFF file reusing the source's fmt chunk verbatim.
func writeWAV(path string, fmtChunk, data []byte) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create chunk %s: %w", path, err)
	}
	defer out.Close()

	fmtSize := len(fmtChunk)
	if fmtSize%2 != 0 {
		fmtSize++ // padded below
	}
	riffSize := 4 + (8 + fmtSize) + (8 + len(data))

	header := make([]byte, 0, 12+8+fmtSize+8)
	header = append(header, []byte("RIFF")...)
	header = binary.LittleEndian.AppendUint32(header, uint32(riffSize))
	header = append(header, []byte("WAVE")...)
	header = append(header, []byte("fmt ")...)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(fmtChunk)))
	header = append(header, fmtChunk...)
	if len(fmtChunk)%2 != 0 {
		header = append(header, 0)
	}
	header = append(header, []byte("data")...)
	header = binary.LittleEndian.AppendUint32(header, uint32(len(data)))

	if _, err := out.Write(header); err != nil {
		return fmt.Errorf("write chunk header: %w", err)
	}
	if _, err := out.Write(data); err != nil {
		return fmt.Errorf("write chunk data: %w", err)
	}

	return nil
}
