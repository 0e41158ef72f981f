package dissonaut_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/dissonaut/dissonaut"
)

func TestWavHeaderFloat(t *testing.T) {
	buffer := make(dissonaut.AudioBuffer, 3)
	data, err := dissonaut.Wav(buffer, 48000, false)
	if err != nil {
		t.Fatalf("Wav failed: %v", err)
	}
	// 58-byte header (RIFF + 18-byte fmt + fact + data) and 6 float samples.
	if len(data) != 58+6*4 {
		t.Fatalf("expected %d bytes, got %d", 58+6*4, len(data))
	}
	if !bytes.Equal(data[0:4], []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WAVE")) {
		t.Error("missing RIFF/WAVE markers")
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 3 {
		t.Errorf("expected IEEE float format 3, got %d", format)
	}
	if rate := binary.LittleEndian.Uint32(data[24:28]); rate != 48000 {
		t.Errorf("expected sample rate 48000, got %d", rate)
	}
}

func TestWavHeaderPCM16(t *testing.T) {
	buffer := make(dissonaut.AudioBuffer, 4)
	data, err := dissonaut.Wav(buffer, 44100, true)
	if err != nil {
		t.Fatalf("Wav failed: %v", err)
	}
	if len(data) != 44+8*2 {
		t.Fatalf("expected %d bytes, got %d", 44+8*2, len(data))
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != 1 {
		t.Errorf("expected PCM format 1, got %d", format)
	}
	if chunkSize := binary.LittleEndian.Uint32(data[4:8]); int(chunkSize) != len(data)-8 {
		t.Errorf("RIFF chunk size %d does not match file length %d", chunkSize, len(data))
	}
}

func TestRawPCM16Clamps(t *testing.T) {
	buffer := dissonaut.AudioBuffer{{2, -2}}
	data, err := dissonaut.Raw(buffer, true)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	left := int16(binary.LittleEndian.Uint16(data[0:2]))
	right := int16(binary.LittleEndian.Uint16(data[2:4]))
	if left != 32767 {
		t.Errorf("expected left sample clamped to 32767, got %d", left)
	}
	if right != -32768 {
		t.Errorf("expected right sample clamped to -32768, got %d", right)
	}
}

func TestRawFloatLength(t *testing.T) {
	buffer := make(dissonaut.AudioBuffer, 10)
	data, err := dissonaut.Raw(buffer, false)
	if err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	if len(data) != 10*2*4 {
		t.Errorf("expected %d bytes, got %d", 10*2*4, len(data))
	}
}
