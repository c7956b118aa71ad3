package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// flexInt64 decodes JSON numbers, numeric strings, empty strings and null.
type flexInt64 int64

func (f flexInt64) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(f), 10)), nil
}

func (f *flexInt64) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	*f = flexInt64(v)
	return nil
}

// flexInt is the int sized counterpart of flexInt64.
type flexInt int

func (f flexInt) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(int(f))), nil
}

func (f *flexInt) UnmarshalJSON(data []byte) error {
	v, err := parseFlexNumber(data)
	if err != nil {
		return err
	}
	if v > math.MaxInt || v < math.MinInt {
		return fmt.Errorf("number %d out of range", v)
	}
	*f = flexInt(v)
	return nil
}

func parseFlexNumber(data []byte) (int64, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return 0, nil
	}
	raw := string(data)
	if data[0] == '"' {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid numeric string %s: %w", raw, err)
		}
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			return 0, nil
		}
	}
	if v, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return v, nil
	}
	fv, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %s", raw)
	}
	return int64(fv), nil
}

func itoa(v int) string {
	return strconv.Itoa(v)
}

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}
