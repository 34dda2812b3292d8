// Package encoding packs survey grids into compact strings.
package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRuns packs palette indices as base64(varint run, varint index)
// pairs. Runs never cross a row boundary so a row can be decoded alone.
func EncodeRuns(ids []uint16, rowLen int) string {
	if rowLen <= 0 {
		rowLen = len(ids)
	}
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(ids); {
		rowEnd := (i/rowLen + 1) * rowLen
		if rowEnd > len(ids) {
			rowEnd = len(ids)
		}
		v := ids[i]
		run := 1
		for i+run < rowEnd && ids[i+run] == v {
			run++
		}
		n := binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(v))
		buf.Write(tmp[:n])
		i += run
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRuns reverses EncodeRuns and checks the result holds want cells.
func DecodeRuns(b64 string, want int) ([]uint16, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	out := make([]uint16, 0, want)
	for i := 0; i < len(raw); {
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad run at %d", i)
		}
		i += n
		v, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad index at %d", i)
		}
		i += n
		if v > 0xFFFF {
			return nil, fmt.Errorf("palette index too large: %d", v)
		}
		if run == 0 || len(out)+int(run) > want {
			return nil, fmt.Errorf("run of %d overflows %d cells", run, want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint16(v))
		}
	}
	if len(out) != want {
		return nil, fmt.Errorf("decoded %d cells, want %d", len(out), want)
	}
	return out, nil
}
