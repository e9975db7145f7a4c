package knowledgebase

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/entlink/internal/domain"
	"github.com/kailas-cloud/entlink/internal/domain/graph"
)

// Seed is a knowledge-base dump in YAML form:
//
//	resources:
//	  - id: 20
//	    uri: dbr:Berlin
//	    types: {100: 0.9}
//	clusters: {100: 1000}
type Seed struct {
	Resources []domain.Resource             `yaml:"resources"`
	Clusters  map[graph.NodeID]graph.NodeID `yaml:"clusters"`
}

// DecodeSeed parses a YAML seed.
func DecodeSeed(r io.Reader) (Seed, error) {
	var s Seed
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && err != io.EOF {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	return s, nil
}

// LoadSeedFile reads path and stores its content. It returns the number of
// resources written.
func (r *Repo) LoadSeedFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, fmt.Errorf("open seed: %w", err)
	}
	defer func() { _ = f.Close() }()

	seed, err := DecodeSeed(f)
	if err != nil {
		return 0, err
	}
	if err := r.Put(ctx, seed.Resources, seed.Clusters); err != nil {
		return 0, fmt.Errorf("store seed: %w", err)
	}
	return len(seed.Resources), nil
}
