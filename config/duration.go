package config

import (
	"time"
)

// Duration is a time.Duration that is expressed in YAML using Go's duration
// string syntax, such as "1m30s".
type Duration time.Duration

// UnmarshalYAML unmarshals a duration string.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}

	*d = Duration(v)

	return nil
}

// MarshalYAML marshals the duration to its string form.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}
