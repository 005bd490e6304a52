package token

import (
	"bytes"

	"github.com/ugorji/go/codec"
)

func handle() *codec.JsonHandle {
	jh := new(codec.JsonHandle)
	jh.Canonical = true
	return jh
}

// Marshal encodes v with the canonical JSON handle. The output is stable and is
// what gets signed.
func Marshal(v interface{}) ([]byte, error) {
	b := new(bytes.Buffer)
	enc := codec.NewEncoder(b, handle())

	if err := enc.Encode(v); err != nil {
		return nil, err
	}

	return b.Bytes(), nil
}

// Unmarshal decodes the output of Marshal into v.
func Unmarshal(data []byte, v interface{}) error {
	dec := codec.NewDecoder(bytes.NewBuffer(data), handle())
	return dec.Decode(v)
}
