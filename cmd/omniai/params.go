package main

import (
	"encoding/json"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/BaSui01/omniai/llm"
)

// paramFlag collects repeatable --param key=value pairs.
type paramFlag map[string]any

func (p paramFlag) String() string {
	if len(p) == 0 {
		return ""
	}
	data, _ := json.Marshal(map[string]any(p))
	return string(data)
}

// Set parses key=value. Values that are valid JSON keep their JSON type,
// so n=2 is a number and include=["usage"] a list; anything else stays a string.
func (p paramFlag) Set(raw string) error {
	key, value, ok := strings.Cut(raw, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return fmt.Errorf("invalid param %q, want key=value", raw)
	}
	p[key] = parseParamValue(value)
	return nil
}

func parseParamValue(value string) any {
	var v any
	if err := json.Unmarshal([]byte(value), &v); err == nil {
		return v
	}
	return value
}

// extra returns nil for an empty set so requests carry no Extra at all.
func (p paramFlag) extra() map[string]any {
	if len(p) == 0 {
		return nil
	}
	return map[string]any(p)
}

// openImage opens path as an upload part. The caller closes the file.
func openImage(path string) (llm.FilePart, *os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return llm.FilePart{}, nil, fmt.Errorf("open image: %w", err)
	}
	part := llm.FilePart{
		Filename:    filepath.Base(path),
		ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
		Reader:      f,
	}
	return part, f, nil
}
