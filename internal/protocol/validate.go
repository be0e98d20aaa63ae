package protocol

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validator checks inbound wire messages against the JSON Schemas on disk.
// Violations are reported, not fatal: the session keeps running on lenient
// decoding and the operator gets a log line per bad message shape.
type Validator struct {
	state *jsonschema.Schema
	ack   *jsonschema.Schema
}

// LoadValidator compiles the schemas under dir.
func LoadValidator(dir string) (*Validator, error) {
	v := &Validator{}
	var err error
	if v.state, err = jsonschema.Compile(filepath.Join(dir, "state.schema.json")); err != nil {
		return nil, fmt.Errorf("state schema: %w", err)
	}
	if v.ack, err = jsonschema.Compile(filepath.Join(dir, "ack.schema.json")); err != nil {
		return nil, fmt.Errorf("ack schema: %w", err)
	}
	return v, nil
}

func (v *Validator) CheckState(raw []byte) error { return check(v.state, raw) }
func (v *Validator) CheckAck(raw []byte) error   { return check(v.ack, raw) }

func check(s *jsonschema.Schema, raw []byte) error {
	if s == nil {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return err
	}
	return s.Validate(doc)
}
