package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aretw0/screengraph/pkg/automation"
	"github.com/aretw0/screengraph/pkg/graph"
	"github.com/aretw0/screengraph/pkg/loader"
)

// graphFiles are looked up, in order, when a directory is given.
var graphFiles = []string{"screengraph.graph.yaml", "graph.yaml", "graph.yml", "graph.json"}

// ResolveGraphPath returns path when it is a file. For a directory it picks
// the first conventional graph file, then <dirname>.yaml.
func ResolveGraphPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("graph not found: %w", err)
	}
	if !info.IsDir() {
		return path, nil
	}

	candidates := append([]string(nil), graphFiles...)
	if abs, err := filepath.Abs(path); err == nil {
		candidates = append(candidates, filepath.Base(abs)+".yaml")
	}
	for _, name := range candidates {
		candidate := filepath.Join(path, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no graph file in %s (looked for %v)", path, candidates)
}

// LoadGraph resolves and builds the graph at path against driver.
func LoadGraph(path string, driver automation.Driver) (*graph.Graph, error) {
	file, err := ResolveGraphPath(path)
	if err != nil {
		return nil, err
	}
	return loader.LoadGraph(file, driver)
}
