package plans

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ParseGenerateRequestYAML decodes a request file. Unknown keys are rejected.
func ParseGenerateRequestYAML(data []byte) (GenerateRequest, error) {
	var req GenerateRequest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return GenerateRequest{}, fmt.Errorf("parse request yaml: empty document")
		}
		return GenerateRequest{}, fmt.Errorf("parse request yaml: %w", err)
	}
	req.Normalize()
	return req, nil
}

// LoadGenerateRequestFile reads and decodes a YAML request file.
func LoadGenerateRequestFile(path string) (GenerateRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return GenerateRequest{}, fmt.Errorf("read request file: %w", err)
	}
	return ParseGenerateRequestYAML(data)
}
