package directory

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/cmlabs-hris/compensation-backend-go/internal/domain/workflow"
	"gopkg.in/yaml.v3"
)

type document struct {
	Roles map[string]workflow.Identity `yaml:"roles"`
}

// StaticDirectory resolves assignee roles from a fixed table. Lookups ignore case.
type StaticDirectory struct {
	entries map[string]workflow.Identity
}

func New(entries map[string]workflow.Identity) *StaticDirectory {
	d := &StaticDirectory{entries: make(map[string]workflow.Identity, len(entries))}
	for role, id := range entries {
		d.entries[normalize(role)] = id
	}
	return d
}

// Parse builds a directory from a YAML document with a top-level roles map.
func Parse(data []byte) (*StaticDirectory, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse role directory: %w", err)
	}
	return New(doc.Roles), nil
}

func LoadFile(path string) (*StaticDirectory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read role directory: %w", err)
	}
	return Parse(data)
}

func (d *StaticDirectory) Resolve(ctx context.Context, role string) (workflow.Identity, bool) {
	id, ok := d.entries[normalize(role)]
	return id, ok
}

func (d *StaticDirectory) Len() int {
	return len(d.entries)
}

func normalize(role string) string {
	return strings.ToLower(strings.TrimSpace(role))
}
