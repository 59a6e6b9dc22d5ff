package cmd

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/checkout-sim/checkout-sim/store"
)

//go:embed defaults.yaml
var defaultCatalogYAML []byte

// CatalogFile is the YAML structure of a product catalog file.
type CatalogFile struct {
	Products []store.Product `yaml:"products"`
}

// loadCatalog reads a catalog from path, or the built-in catalog when path is
// empty. Uses strict parsing: unrecognized keys (typos) are rejected.
func loadCatalog(path string) (*store.Catalog, error) {
	data := defaultCatalogYAML
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
	}
	var file CatalogFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if len(file.Products) == 0 {
		return nil, fmt.Errorf("catalog has no products")
	}
	return store.NewCatalog(file.Products)
}

// parseStationAt parses a station lifecycle entry formatted "id:tick".
func parseStationAt(entry string) (string, int64, error) {
	idx := strings.LastIndex(entry, ":")
	if idx <= 0 || idx == len(entry)-1 {
		return "", 0, fmt.Errorf("%q is not formatted id:tick", entry)
	}
	at, err := strconv.ParseInt(entry[idx+1:], 10, 64)
	if err != nil || at < 0 {
		return "", 0, fmt.Errorf("%q has an invalid tick value", entry)
	}
	return entry[:idx], at, nil
}
