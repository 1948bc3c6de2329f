package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mercator-hq/nebula/pkg/value"
)

// readDocument reads a plain JSON or YAML document. "-" reads stdin. Files
// ending in .json are decoded as JSON so integer identity and key order
// follow the JSON decoder; everything else is YAML.
func readDocument(path string, stdin io.Reader) (value.Value, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return value.Value{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var v value.Value
	if strings.EqualFold(filepath.Ext(path), ".json") {
		v, err = value.ParseJSON(data)
	} else {
		v, err = value.ParseYAML(data)
	}
	if err != nil {
		return value.Value{}, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return v, nil
}

// readRecord reads a document that must be an object.
func readRecord(path string, stdin io.Reader) (*value.Object, error) {
	v, err := readDocument(path, stdin)
	if err != nil {
		return nil, err
	}
	obj, ok := v.AsObject()
	if !ok {
		return nil, fmt.Errorf("%s: expected an object, got %s", path, v.TypeName())
	}
	return obj, nil
}
