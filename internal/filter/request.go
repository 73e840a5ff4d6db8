package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Request is an ordered set of (filter name, apply) pairs for one report
// execution. Go maps iterate in random order, so Request keeps its own
// insertion order: resolved fragments join in exactly the order the caller
// (or the config document) listed them. Only entries set to true matter to
// the injector.
type Request struct {
	names []string
	apply map[string]bool
}

// NewRequest returns an empty request.
func NewRequest() Request {
	return Request{apply: map[string]bool{}}
}

// Set records a filter flag. Re-setting a known name updates the flag in
// place without changing its position.
func (r *Request) Set(name string, apply bool) {
	if r.apply == nil {
		r.apply = map[string]bool{}
	}
	if _, seen := r.apply[name]; !seen {
		r.names = append(r.names, name)
	}
	r.apply[name] = apply
}

// Enabled returns the names flagged true, in insertion order.
func (r Request) Enabled() []string {
	var out []string
	for _, name := range r.names {
		if r.apply[name] {
			out = append(out, name)
		}
	}
	return out
}

// Names returns all recorded names in insertion order, regardless of flag.
func (r Request) Names() []string {
	return append([]string(nil), r.names...)
}

// Len returns the number of recorded entries.
func (r Request) Len() int {
	return len(r.names)
}

// UnmarshalJSON decodes a JSON object of name -> bool while preserving the
// document's key order. encoding/json map decoding would lose the order, so
// the object is walked token by token.
func (r *Request) UnmarshalJSON(b []byte) error {
	*r = NewRequest()

	trimmed := bytes.TrimSpace(b)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("filter request must be a JSON object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("filter request key is not a string: %v", keyTok)
		}
		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		val, ok := valTok.(bool)
		if !ok {
			return fmt.Errorf("filter %q: value must be a boolean, got %v", key, valTok)
		}
		r.Set(key, val)
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

// MarshalJSON encodes the request as a JSON object in insertion order.
func (r Request) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range r.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		if r.apply[name] {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
