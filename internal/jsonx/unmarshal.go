package jsonx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
)

// UnmarshalOptions is a set of options that control how JSON is unmarshaled.
type UnmarshalOptions struct {
	AllowUnknownFields bool
}

// UnmarshalOption is a function that changes the behavior of JSON unmarshaling.
type UnmarshalOption = func(*UnmarshalOptions)

// AllowUnknownFields is an UnmarshalOption that controls whether the content
// may contain fields that are not present in the target type.
//
// Unknown fields are disallowed by default.
func AllowUnknownFields(allow bool) UnmarshalOption {
	return func(opts *UnmarshalOptions) {
		opts.AllowUnknownFields = allow
	}
}

// Decode unmarshals JSON content from r into v.
//
// It returns an error if r contains anything other than a single top-level
// JSON value.
func Decode(r io.Reader, v any, options ...UnmarshalOption) error {
	var opts UnmarshalOptions
	for _, fn := range options {
		fn(&opts)
	}

	dec := json.NewDecoder(r)
	if !opts.AllowUnknownFields {
		dec.DisallowUnknownFields()
	}

	if err := dec.Decode(v); err != nil {
		return err
	}

	if dec.More() {
		return errUnexpectedContent
	}

	return nil
}

// Unmarshal unmarshals JSON content from data into v.
func Unmarshal(data []byte, v any, options ...UnmarshalOption) error {
	return Decode(
		bytes.NewReader(data),
		v,
		options...,
	)
}

// errUnexpectedContent uses the same "json:" prefix as the errors produced by
// encoding/json.
var errUnexpectedContent = errors.New("json: unexpected content after top-level value")
