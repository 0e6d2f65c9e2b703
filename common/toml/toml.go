// Package toml wraps BurntSushi/toml with strict decoding: keys present in
// the document but absent from the target struct are an error.
package toml

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

func Marshal(v any) ([]byte, error) {
	return toml.Marshal(v)
}

// Decode reads a document from r into ptr, rejecting unknown keys.
func Decode(r io.Reader, ptr any) error {
	md, err := toml.NewDecoder(r).Decode(ptr)
	if err != nil {
		return err
	}
	return checkUndecoded(md)
}

// DecodeFile is Decode on the named file.
func DecodeFile(path string, ptr any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := Decode(f, ptr); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}

func NewEncoder(w io.Writer) *toml.Encoder {
	return toml.NewEncoder(w)
}

func checkUndecoded(md toml.MetaData) error {
	undecoded := md.Undecoded()
	if len(undecoded) == 0 {
		return nil
	}
	keys := make([]string, len(undecoded))
	for i, k := range undecoded {
		keys[i] = k.String()
	}
	return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
}
