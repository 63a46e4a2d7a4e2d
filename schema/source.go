package schema

import (
	"io"
	"os"
)

// Load accepts a schema in any of several forms: raw YAML/JSON bytes, a
// filesystem path (every string is read as a path, never as schema text),
// an io.Reader, or an already-decoded mapping.
func Load(src any) (*Schema, error) {
	switch v := src.(type) {
	case []byte:
		return Parse(v)
	case string:
		return LoadFile(v)
	case io.Reader:
		data, err := io.ReadAll(v)
		if err != nil {
			return nil, err
		}
		return Parse(data)
	case map[string]any:
		return ParseMap(v)
	default:
		return nil, errUnknownType("", "unsupported schema source type")
	}
}

// LoadFile reads path and parses it as a schema document. The file is
// closed on every exit path, including error.
func LoadFile(path string) (*Schema, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
