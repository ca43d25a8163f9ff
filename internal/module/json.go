package module

import (
	"bytes"
	"encoding/json"
)

// MarshalJSON encodes d as a JSON object in insertion order when every key
// is a string, and as a list of [key, value] pairs otherwise.
func (d *Dict) MarshalJSON() ([]byte, error) {
	if d == nil {
		return []byte("null"), nil
	}
	for _, e := range d.Entries {
		if _, ok := e.Key.(string); !ok {
			pairs := make([][2]any, len(d.Entries))
			for i, e := range d.Entries {
				pairs[i] = [2]any{e.Key, e.Value}
			}
			return marshal(pairs)
		}
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range d.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshal(e.Key)
		if err != nil {
			return nil, err
		}
		v, err := marshal(e.Value)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON encodes a callable as its name in the form "<function name>".
func (c Callable) MarshalJSON() ([]byte, error) {
	return marshal("<function " + c.Name + ">")
}

// marshal is json.Marshal without HTML escaping, so that reprs such as
// "<function run>" survive an encoder that has escaping turned off.
func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
