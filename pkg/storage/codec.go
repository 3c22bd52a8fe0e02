package storage

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/golang/snappy"

	"github.com/dd0wney/starry-habits/pkg/habits"
)

// compressedMagic prefixes snappy-compressed documents so that Load can read
// either form regardless of the current Compress setting.
var compressedMagic = []byte("\xffSZ1")

// encode serializes data as JSON, snappy-compressed when compress is set.
func encode(data *habits.Data, compress bool) ([]byte, error) {
	if data == nil {
		data = habits.NewData()
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal habits: %w", err)
	}
	if !compress {
		return raw, nil
	}
	out := make([]byte, 0, len(compressedMagic)+snappy.MaxEncodedLen(len(raw)))
	out = append(out, compressedMagic...)
	return append(out, snappy.Encode(nil, raw)...), nil
}

// decode accepts either plain JSON or a compressed document.
func decode(raw []byte) (*habits.Data, error) {
	if len(raw) == 0 {
		return habits.NewData(), nil
	}

	if rest, ok := bytes.CutPrefix(raw, compressedMagic); ok {
		decompressed, err := snappy.Decode(nil, rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		raw = decompressed
	}

	data := habits.NewData()
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	data.Normalize()
	return data, nil
}
