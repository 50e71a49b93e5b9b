package card

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
	"io"
)

// Character cards ride inside a PNG tEXt chunk keyed "chara", holding
// base64-encoded card JSON. Only chunk-level surgery is needed, never
// pixel decoding, so the codec below works on raw chunks.

const charaKeyword = "chara"

// maxChunkLen caps how much readChunks will allocate for one chunk. Card
// PNGs stay well under this even with large embedded lorebooks; a longer
// declared length means a corrupt or hostile file.
const maxChunkLen = 8 << 20

var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ErrNoChara is returned when a PNG carries no chara metadata.
var ErrNoChara = errors.New("card: no chara metadata in PNG")

type pngChunk struct {
	typ  string
	data []byte
}

// ExtractChara reads the embedded card document from a PNG stream.
func ExtractChara(r io.Reader) (map[string]any, error) {
	chunks, err := readChunks(r)
	if err != nil {
		return nil, err
	}

	for _, c := range chunks {
		if c.typ != "tEXt" {
			continue
		}
		keyword, value, ok := bytes.Cut(c.data, []byte{0})
		if !ok || string(keyword) != charaKeyword {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(string(value))
		if err != nil {
			return nil, fmt.Errorf("decoding chara payload: %w", err)
		}
		var data map[string]any
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("parsing chara JSON: %w", err)
		}
		return data, nil
	}

	return nil, ErrNoChara
}

// EmbedChara writes the PNG from r to w with its chara metadata
// replaced by data. Runtime fields that must not survive a save are
// cleared on a shallow copy; the caller's map is not modified.
func EmbedChara(r io.Reader, w io.Writer, data map[string]any) error {
	chunks, err := readChunks(r)
	if err != nil {
		return err
	}

	payload, err := encodeChara(data)
	if err != nil {
		return err
	}

	if _, err := w.Write(pngSignature); err != nil {
		return err
	}

	inserted := false
	for _, c := range chunks {
		// Drop any existing chara chunk; the replacement goes right
		// after IHDR so readers find it before image data.
		if c.typ == "tEXt" {
			if keyword, _, ok := bytes.Cut(c.data, []byte{0}); ok && string(keyword) == charaKeyword {
				continue
			}
		}
		if err := writeChunk(w, c); err != nil {
			return err
		}
		if c.typ == "IHDR" && !inserted {
			if err := writeChunk(w, pngChunk{typ: "tEXt", data: payload}); err != nil {
				return err
			}
			inserted = true
		}
	}

	if !inserted {
		return errors.New("card: PNG has no IHDR chunk")
	}
	return nil
}

func encodeChara(data map[string]any) ([]byte, error) {
	// Stale runtime state from the source card must not leak into the
	// translated copy.
	clean := make(map[string]any, len(data))
	for k, v := range data {
		clean[k] = v
	}
	clean["chat"] = nil
	clean["create_date"] = nil

	raw, err := json.Marshal(clean)
	if err != nil {
		return nil, fmt.Errorf("encoding chara JSON: %w", err)
	}

	b64 := base64.StdEncoding.EncodeToString(raw)

	payload := make([]byte, 0, len(charaKeyword)+1+len(b64))
	payload = append(payload, charaKeyword...)
	payload = append(payload, 0)
	payload = append(payload, b64...)
	return payload, nil
}

func readChunks(r io.Reader) ([]pngChunk, error) {
	sig := make([]byte, len(pngSignature))
	if _, err := io.ReadFull(r, sig); err != nil {
		return nil, fmt.Errorf("reading PNG signature: %w", err)
	}
	if !bytes.Equal(sig, pngSignature) {
		return nil, errors.New("card: not a PNG file")
	}

	var chunks []pngChunk
	for {
		var header [8]byte
		if _, err := io.ReadFull(r, header[:]); err != nil {
			if err == io.EOF && len(chunks) > 0 {
				return chunks, nil
			}
			return nil, fmt.Errorf("reading PNG chunk header: %w", err)
		}

		length := binary.BigEndian.Uint32(header[:4])
		typ := string(header[4:8])
		if length > maxChunkLen {
			return nil, fmt.Errorf("card: PNG chunk %s length %d exceeds %d", typ, length, maxChunkLen)
		}

		data := make([]byte, length)
		if _, err := io.ReadFull(r, data); err != nil {
			return nil, fmt.Errorf("reading PNG chunk %s: %w", typ, err)
		}

		var crcBuf [4]byte
		if _, err := io.ReadFull(r, crcBuf[:]); err != nil {
			return nil, fmt.Errorf("reading PNG chunk %s CRC: %w", typ, err)
		}

		want := binary.BigEndian.Uint32(crcBuf[:])
		got := crc32.ChecksumIEEE(append([]byte(typ), data...))
		if want != got {
			return nil, fmt.Errorf("card: PNG chunk %s has bad CRC", typ)
		}

		chunks = append(chunks, pngChunk{typ: typ, data: data})
		if typ == "IEND" {
			return chunks, nil
		}
	}
}

func writeChunk(w io.Writer, c pngChunk) error {
	var header [8]byte
	binary.BigEndian.PutUint32(header[:4], uint32(len(c.data)))
	copy(header[4:8], c.typ)

	crc := crc32.ChecksumIEEE(append([]byte(c.typ), c.data...))
	var crcBuf [4]byte
	binary.BigEndian.PutUint32(crcBuf[:], crc)

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if _, err := w.Write(c.data); err != nil {
		return err
	}
	_, err := w.Write(crcBuf[:])
	return err
}
