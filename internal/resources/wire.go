package resources

import (
	"bytes"
	"strconv"
	"strings"
)

// The upstream API is loose about scalar types: active flags arrive as
// booleans or 0/1 integers, prices and orders sometimes as strings. The flex
// types below absorb whatever shows up, the way the panel has always consumed
// these endpoints.

type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("true")):
		*b = true
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		*b = false
	default:
		s := strings.Trim(string(data), `"`)
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*b = s != "" && s != "0"
			return nil
		}
		*b = n != 0
	}
	return nil
}

type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexFloat(n)
	return nil
}

type flexInt int

func (i *flexInt) UnmarshalJSON(data []byte) error {
	var f flexFloat
	if err := f.UnmarshalJSON(data); err != nil {
		return err
	}
	*i = flexInt(f)
	return nil
}

/// mutationPayload builds the loose JSON body mutations send: only the keys
// the form actually carries.
type mutationPayload map[string]interface{}
