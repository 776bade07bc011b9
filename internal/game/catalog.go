/*
Package game
File: catalog.go
Description:
    Loads the static content catalog (buildings and multiplier offers).
    The default catalog is embedded in the binary; an operator can point
    CATALOG_PATH at a YAML file to retune the economy and reload it with SIGHUP.
*/

package game

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	apperrors "github.com/everforgeworks/data-empire/internal/shared/errors"
)

// maxOfferSeconds caps a multiplier window at one day.
const maxOfferSeconds = 24 * 60 * 60

//go:embed catalog.yaml
var embeddedCatalog []byte

// DefaultCatalog parses the embedded catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(embeddedCatalog)
}

// LoadCatalog reads a YAML catalog from disk, or the embedded one when path is empty.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}

	// 1. Read the YAML file
	f, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}

	// 2. Unmarshal and validate
	return ParseCatalog(f)
}

// ParseCatalog unmarshals and validates a YAML catalog document.
func ParseCatalog(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, apperrors.WrapValidation("catalog is not valid YAML", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if len(c.Buildings) == 0 {
		return apperrors.Validation("catalog has no buildings")
	}

	seen := make(map[string]bool, len(c.Buildings))
	for _, b := range c.Buildings {
		switch {
		case b.ID == "":
			return apperrors.Validation("building without id")
		case seen[b.ID]:
			return apperrors.Validationf("duplicate building id %q", b.ID)
		case !finite(b.BaseCost) || b.BaseCost < 0:
			return apperrors.Validationf("building %q: base_cost must be a finite number >= 0", b.ID)
		case b.LevelRequirement < 1:
			return apperrors.Validationf("building %q: level_requirement must be >= 1", b.ID)
		case !finite(b.BaseProduction) || b.BaseProduction < 0:
			return apperrors.Validationf("building %q: base_production must be a finite number >= 0", b.ID)
		}
		seen[b.ID] = true
	}

	offers := make(map[string]bool, len(c.Multipliers))
	for _, m := range c.Multipliers {
		switch {
		case m.ID == "":
			return apperrors.Validation("multiplier offer without id")
		case offers[m.ID]:
			return apperrors.Validationf("duplicate multiplier offer id %q", m.ID)
		case m.DurationSeconds <= 0 || m.DurationSeconds > maxOfferSeconds:
			return apperrors.Validationf("multiplier %q: duration_seconds must be in 1..%d", m.ID, maxOfferSeconds)
		case !finite(m.Multiplier) || m.Multiplier < 1:
			return apperrors.Validationf("multiplier %q: multiplier must be a finite number >= 1", m.ID)
		case !finite(m.Cost) || m.Cost < 0:
			return apperrors.Validationf("multiplier %q: cost must be a finite number >= 0", m.ID)
		}
		offers[m.ID] = true
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Building is a helper to retrieve a kind by its ID.
func (c *Catalog) Building(id string) (BuildingKind, bool) {
	for _, b := range c.Buildings {
		if b.ID == id {
			return b, true
		}
	}
	return BuildingKind{}, false
}

// Multiplier is a helper to retrieve a multiplier offer by its ID.
func (c *Catalog) Multiplier(id string) (MultiplierOffer, bool) {
	for _, m := range c.Multipliers {
		if m.ID == id {
			return m, true
		}
	}
	return MultiplierOffer{}, false
}
