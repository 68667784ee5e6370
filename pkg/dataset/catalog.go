package dataset

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"
)

// Function is the declared schema of one callable FHIR API.
type Function struct {
	Method      string         `json:"method"`
	Path        string         `json:"path"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// Catalog maps function names to their schemas. Loaded once, read-only,
// shared across all conversations against the same server.
type Catalog map[string]Function

// LoadCatalog reads the function catalog JSON from path.
func LoadCatalog(path string) (Catalog, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read function catalog: %w", err)
	}
	var catalog Catalog
	if err := sonic.Unmarshal(content, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse function catalog %s: %w", path, err)
	}
	return catalog, nil
}
