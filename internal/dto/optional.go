package dto

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// OptionalInt binds an integer that clients send as a number, a numeric
// string, an empty string or null.
type OptionalInt struct {
	Value int64
	Set   bool
}

// Int builds a set OptionalInt.
func Int(v int64) OptionalInt {
	return OptionalInt{Value: v, Set: true}
}

// UnmarshalJSON implements json.Unmarshaler.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*o = OptionalInt{}
		return nil
	}
	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid integer %s", raw)
		}
		raw = unquoted
	}
	return o.UnmarshalParam(raw)
}

// UnmarshalParam implements gin's binding.BindUnmarshaler for form fields.
func (o *OptionalInt) UnmarshalParam(param string) error {
	param = strings.TrimSpace(param)
	if param == "" {
		*o = OptionalInt{}
		return nil
	}
	v, err := strconv.ParseInt(param, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integer %q", param)
	}
	*o = OptionalInt{Value: v, Set: true}
	return nil
}

// MarshalJSON writes null when unset.
func (o OptionalInt) MarshalJSON() ([]byte, error) {
	if !o.Set {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatInt(o.Value, 10)), nil
}

// IntPtr returns the value as *int, nil when unset or zero.
func (o OptionalInt) IntPtr() *int {
	if !o.Set || o.Value == 0 {
		return nil
	}
	v := int(o.Value)
	return &v
}
