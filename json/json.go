// Package json is a json-iterator front end that fills `default` struct
// tags before encoding or decoding.
package json

import (
	"io"
	"reflect"

	"github.com/creasty/defaults"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Encoder struct {
	*jsoniter.Encoder
}

func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{
		Encoder: json.NewEncoder(w),
	}
}

// Encode applies defaults to struct pointers before encoding.
func (e *Encoder) Encode(v any) error {
	if err := applyDefaults(v); err != nil {
		return err
	}
	return e.Encoder.Encode(v)
}

func Marshal(v any) ([]byte, error) {
	if err := applyDefaults(v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

func Unmarshal(data []byte, v any) error {
	if err := applyDefaults(v); err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// Convert copies src into dst through a JSON round trip. Keys missing from
// src keep the defaults declared on dst.
func Convert(src, dst any) error {
	data, err := json.Marshal(src)
	if err != nil {
		return err
	}
	return Unmarshal(data, dst)
}

// applyDefaults only touches pointers to structs; maps and slices pass through.
func applyDefaults(v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return nil
	}
	return defaults.Set(v)
}
