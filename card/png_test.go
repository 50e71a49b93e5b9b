package card

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"hash/crc32"
	"testing"
)

func appendChunk(buf *bytes.Buffer, typ string, data []byte) {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(data)))
	copy(header[4:8], typ)
	buf.Write(header[:])
	buf.Write(data)

	crc := crc32.ChecksumIEEE(append([]byte(typ), data...))
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)
	buf.Write(crcBuf[:])
}

// buildPNG assembles a minimal card PNG. chara may be nil for a plain
// image.
func buildPNG(t *testing.T, chara map[string]any) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(pngSignature)

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], 1) // width
	binary.BigEndian.PutUint32(ihdr[4:8], 1) // height
	ihdr[8] = 8                              // bit depth
	appendChunk(&buf, "IHDR", ihdr)

	if chara != nil {
		raw, err := json.Marshal(chara)
		if err != nil {
			t.Fatal(err)
		}
		payload := append([]byte("chara\x00"), base64.StdEncoding.EncodeToString(raw)...)
		appendChunk(&buf, "tEXt", payload)
	}

	appendChunk(&buf, "IDAT", []byte{0x78, 0x9c, 0x62, 0x00})
	appendChunk(&buf, "IEND", nil)
	return buf.Bytes()
}

func TestExtractChara(t *testing.T) {
	png := buildPNG(t, map[string]any{"name": "Aria", "description": "tall"})

	data, err := ExtractChara(bytes.NewReader(png))
	if err != nil {
		t.Fatalf("ExtractChara failed: %v", err)
	}
	if data["name"] != "Aria" || data["description"] != "tall" {
		t.Errorf("data = %v", data)
	}
}

func TestExtractChara_NoMetadata(t *testing.T) {
	png := buildPNG(t, nil)

	_, err := ExtractChara(bytes.NewReader(png))
	if !errors.Is(err, ErrNoChara) {
		t.Errorf("got %v, want ErrNoChara", err)
	}
}

func TestExtractChara_NotPNG(t *testing.T) {
	if _, err := ExtractChara(bytes.NewReader([]byte("JFIF not a png"))); err == nil {
		t.Error("expected an error for non-PNG input")
	}
}

func TestEmbedChara_Roundtrip(t *testing.T) {
	png := buildPNG(t, map[string]any{"name": "Aria", "chat": "old chat", "create_date": "2024-01-01"})

	updated := map[string]any{
		"name":        "Aria",
		"description": "translated",
		"chat":        "stale",
		"create_date": "2024-01-01",
	}

	var out bytes.Buffer
	if err := EmbedChara(bytes.NewReader(png), &out, updated); err != nil {
		t.Fatalf("EmbedChara failed: %v", err)
	}

	got, err := ExtractChara(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatalf("re-extract failed: %v", err)
	}
	if got["description"] != "translated" {
		t.Errorf("description = %v", got["description"])
	}

	// Runtime fields are cleared on save.
	if got["chat"] != nil || got["create_date"] != nil {
		t.Errorf("runtime fields survived: chat=%v create_date=%v", got["chat"], got["create_date"])
	}
	// The caller's map stays intact.
	if updated["chat"] != "stale" {
		t.Error("EmbedChara mutated the input map")
	}

	// Exactly one chara chunk remains.
	chunks, err := readChunks(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	count := 0
	for _, c := range chunks {
		if c.typ == "tEXt" && bytes.HasPrefix(c.data, []byte("chara\x00")) {
			count++
		}
	}
	if count != 1 {
		t.Errorf("chara chunks = %d, want 1", count)
	}
}

func TestEmbedChara_PlainImageGainsChara(t *testing.T) {
	png := buildPNG(t, nil)

	var out bytes.Buffer
	if err := EmbedChara(bytes.NewReader(png), &out, map[string]any{"name": "New"}); err != nil {
		t.Fatalf("EmbedChara failed: %v", err)
	}

	got, err := ExtractChara(bytes.NewReader(out.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	if got["name"] != "New" {
		t.Errorf("name = %v", got["name"])
	}
}

func TestReadChunks_ExcessiveLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(pngSignature)
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], 0xfffffff0)
	copy(header[4:8], "IHDR")
	buf.Write(header[:])

	// The declared length must be rejected before any allocation.
	if _, err := ExtractChara(bytes.NewReader(buf.Bytes())); err == nil {
		t.Error("expected an error for an oversized chunk length")
	}
}

func TestReadChunks_BadCRC(t *testing.T) {
	png := buildPNG(t, nil)
	// Flip a byte inside the IHDR payload.
	png[len(pngSignature)+8+3] ^= 0xff

	if _, err := ExtractChara(bytes.NewReader(png)); err == nil {
		t.Error("expected a CRC error")
	}
}
