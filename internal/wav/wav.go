// Package wav reads and writes the subset of RIFF/WAVE the engine
// needs: PCM16, PCM24, and float32 sample data, decoded into
// channel-major float32 buffers.
package wav

import (
	"encoding/binary"
	"fmt"
	"math"
)

const (
	formatPCM   = 1
	formatFloat = 3
)

// Buffer is decoded audio: channel-major samples, Data holding
// Channels*Frames float32 values in [-1, 1].
type Buffer struct {
	Data       []float32
	Channels   int
	Frames     int
	SampleRate int
}

// Channel returns one channel's samples as a shared slice.
func (b *Buffer) Channel(c int) []float32 {
	return b.Data[c*b.Frames : (c+1)*b.Frames]
}

// Decode parses a WAV file image.
func Decode(data []byte) (*Buffer, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("wav: not a RIFF/WAVE file")
	}

	var (
		format     uint16
		channels   int
		sampleRate int
		bitDepth   int
		samples    []byte
		haveFmt    bool
	)

	// Chunk walk; unknown chunks skip by their declared size.
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if body+size > len(data) {
			return nil, fmt.Errorf("wav: chunk %q overruns file", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("wav: fmt chunk too short (%d bytes)", size)
			}
			format = binary.LittleEndian.Uint16(data[body : body+2])
			channels = int(binary.LittleEndian.Uint16(data[body+2 : body+4]))
			sampleRate = int(binary.LittleEndian.Uint32(data[body+4 : body+8]))
			bitDepth = int(binary.LittleEndian.Uint16(data[body+14 : body+16]))
			haveFmt = true
		case "data":
			samples = data[body : body+size]
		}

		// Chunks are word-aligned.
		off = body + size + size%2
	}

	if !haveFmt {
		return nil, fmt.Errorf("wav: missing fmt chunk")
	}
	if samples == nil {
		return nil, fmt.Errorf("wav: missing data chunk")
	}
	if channels <= 0 {
		return nil, fmt.Errorf("wav: %d channels", channels)
	}

	var read func(i int) float32
	var bytesPer int
	switch {
	case format == formatPCM && bitDepth == 16:
		bytesPer = 2
		read = func(i int) float32 {
			s := int16(binary.LittleEndian.Uint16(samples[i*2:]))
			return float32(s) / 32768
		}
	case format == formatPCM && bitDepth == 24:
		bytesPer = 3
		read = func(i int) float32 {
			b := samples[i*3:]
			s := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
			if s&0x800000 != 0 {
				s |= ^0xffffff
			}
			return float32(s) / 8388608
		}
	case format == formatFloat && bitDepth == 32:
		bytesPer = 4
		read = func(i int) float32 {
			return math.Float32frombits(binary.LittleEndian.Uint32(samples[i*4:]))
		}
	default:
		return nil, fmt.Errorf("wav: unsupported format %d at %d bits", format, bitDepth)
	}

	frames := len(samples) / bytesPer / channels
	buf := &Buffer{
		Data:       make([]float32, channels*frames),
		Channels:   channels,
		Frames:     frames,
		SampleRate: sampleRate,
	}

	// WAV interleaves frames; the engine wants channel-major.
	for f := 0; f < frames; f++ {
		for c := 0; c < channels; c++ {
			buf.Data[c*frames+f] = read(f*channels + c)
		}
	}
	return buf, nil
}

// Encode writes a PCM16 WAV file image from a channel-major buffer.
func Encode(buf *Buffer) []byte {
	dataSize := buf.Channels * buf.Frames * 2
	out := make([]byte, 0, 44+dataSize)

	le16 := func(v uint16) []byte {
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v)
		return b[:]
	}
	le32 := func(v uint32) []byte {
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v)
		return b[:]
	}

	byteRate := buf.SampleRate * buf.Channels * 2
	out = append(out, "RIFF"...)
	out = append(out, le32(uint32(36+dataSize))...)
	out = append(out, "WAVE"...)
	out = append(out, "fmt "...)
	out = append(out, le32(16)...)
	out = append(out, le16(formatPCM)...)
	out = append(out, le16(uint16(buf.Channels))...)
	out = append(out, le32(uint32(buf.SampleRate))...)
	out = append(out, le32(uint32(byteRate))...)
	out = append(out, le16(uint16(buf.Channels*2))...)
	out = append(out, le16(16)...)
	out = append(out, "data"...)
	out = append(out, le32(uint32(dataSize))...)

	for f := 0; f < buf.Frames; f++ {
		for c := 0; c < buf.Channels; c++ {
			s := buf.Data[c*buf.Frames+f]
			// Round at the decode scale so a round trip stays within
			// half a quantization step.
			v := int(math.Round(float64(s) * 32768))
			if v > 32767 {
				v = 32767
			} else if v < -32768 {
				v = -32768
			}
			out = append(out, le16(uint16(int16(v)))...)
		}
	}
	return out
}
