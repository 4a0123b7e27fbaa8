package chart

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Time is an instant in Unix epoch milliseconds.
type Time int64

// NewTime converts t to a Time.
func NewTime(t time.Time) Time { return Time(t.UnixMilli()) }

// At returns a pointer to a Time holding ms. Handy for building records.
func At(ms int64) *Time {
	t := Time(ms)
	return &t
}

// Millis returns the instant as epoch milliseconds.
func (t Time) Millis() int64 { return int64(t) }

// Std converts the instant to a UTC time.Time.
func (t Time) Std() time.Time { return time.UnixMilli(int64(t)).UTC() }

// String formats the instant as RFC 3339 with millisecond precision.
func (t Time) String() string { return t.Std().Format("2006-01-02T15:04:05.000Z07:00") }

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTime parses epoch milliseconds, an RFC 3339 timestamp, or a date.
func ParseTime(s string) (Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty time value")
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Time(ms), nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewTime(t), nil
		}
	}
	return 0, fmt.Errorf("invalid time %q", s)
}

// UnmarshalJSON accepts a number of milliseconds or a time string.
func (t *Time) UnmarshalJSON(data []byte) error {
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		if ms, err := n.Int64(); err == nil {
			*t = Time(ms)
			return nil
		}
		f, err := n.Float64()
		if err != nil {
			return err
		}
		*t = Time(int64(f))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("time must be a number or string: %w", err)
	}
	v, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// UnmarshalTOML accepts integers, floats, strings and native TOML datetimes.
func (t *Time) UnmarshalTOML(v any) error {
	switch x := v.(type) {
	case int64:
		*t = Time(x)
	case float64:
		*t = Time(int64(x))
	case time.Time:
		*t = NewTime(x)
	case string:
		p, err := ParseTime(x)
		if err != nil {
			return err
		}
		*t = p
	default:
		return fmt.Errorf("unsupported TOML time value %T", v)
	}
	return nil
}

// UnmarshalYAML accepts scalar numbers, timestamps and date strings.
func (t *Time) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: time must be a scalar", node.Line)
	}
	v, err := ParseTime(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*t = v
	return nil
}
