package mailer

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

// The freebie download links are deliberately kept server-side so the
// public pages never expose them directly.
//
//go:embed freebies.json
var freebieData []byte

// Freebie is one downloadable product.
type Freebie struct {
	Link string `json:"link"`
	Desc string `json:"desc"`
}

// LoadCatalog parses the embedded freebie catalog (product name -> freebie).
func LoadCatalog() (map[string]Freebie, error) {
	catalog := map[string]Freebie{}
	if err := json.Unmarshal(freebieData, &catalog); err != nil {
		return nil, fmt.Errorf("parse freebie catalog: %w", err)
	}
	return catalog, nil
}
