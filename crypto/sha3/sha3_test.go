package sha3

import (
	"encoding/hex"
	"testing"
)

func TestKeccak(t *testing.T) {
	tests := []struct {
		fn   func(...[]byte) []byte
		in   [][]byte
		want string
	}{
		{Keccak256, nil, "c5d2460186f7233c927e7db2dcc703c0e500b653ca82273b7bfad8045d85a470"},
		{Keccak256, [][]byte{[]byte("abc")}, "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
		{Keccak256, [][]byte{[]byte("a"), []byte("bc")}, "4e03657aea45a94fc7d47ba826c8d667c0d1e6e33a64a036ec44f58fa12d6c45"},
		{Keccak512, nil, "0eab42de4c3ceb9235fc91acffe746b29c29a8c366b7c60e4e67c466f36a4304c00fa9caf9d87976ba469bcbe06713b435f091ef2769fb160cdab33d3670680e"},
	}
	for i, tt := range tests {
		if have := hex.EncodeToString(tt.fn(tt.in...)); have != tt.want {
			t.Errorf("test %d: have %s, want %s", i, have, tt.want)
		}
	}
}
