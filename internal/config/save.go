package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Settings are the values the web page can change at runtime.
type Settings struct {
	DecimalPlaces int
	Blinking      bool
}

// SaveSettings writes s into the display section of the YAML file at path.
// Other keys and comments in the file are kept. A missing file is created.
func SaveSettings(path string, s Settings) error {
	var doc yaml.Node
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode}
	}
	if len(doc.Content) == 0 {
		doc.Content = []*yaml.Node{{Kind: yaml.MappingNode}}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return fmt.Errorf("config %s: top level is not a mapping", path)
	}

	disp := mappingValue(root, "display")
	if disp.Kind != yaml.MappingNode {
		*disp = yaml.Node{Kind: yaml.MappingNode}
	}
	setScalar(disp, "decimal_places", "!!int", strconv.Itoa(s.DecimalPlaces))
	setScalar(disp, "blinking", "!!bool", strconv.FormatBool(s.Blinking))

	out, err := encode(&doc)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return replaceFile(path, out)
}

// mappingValue returns the value node for key in m, adding an empty one if
// the key is missing.
func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	k := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
	v := &yaml.Node{Kind: yaml.MappingNode}
	m.Content = append(m.Content, k, v)
	return v
}

func setScalar(m *yaml.Node, key, tag, value string) {
	v := mappingValue(m, key)
	v.Kind = yaml.ScalarNode
	v.Tag = tag
	v.Value = value
	v.Style = 0
	v.Content = nil
}

func encode(doc *yaml.Node) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// replaceFile replaces path through a temporary file in the same directory.
func replaceFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("save config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	mode := fs.FileMode(0o644)
	if fi, err := os.Stat(path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := os.Chmod(tmp.Name(), mode); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}
