/*
Package game
File: models.go
Description:
    Defines all data structures used by the Data Empire economy.
    This file serves as the "schema" for the application, mapping directly to
    the YAML catalog and to the JSON views returned by the API.

    No logic is performed here; this file is strictly for type definitions.
*/

package game

import "time"

// Tier is the coarse classification of a building by its unlock level.
// It only selects the cost and production curve constants.
type Tier string

const (
	TierEarly Tier = "early" // levelRequirement <= 5
	TierMid   Tier = "mid"   // levelRequirement <= 50
	TierLate  Tier = "late"  // everything above
)

// BuildingKind is one static, immutable entry of the catalog.
type BuildingKind struct {
	ID               string  `yaml:"id" json:"id"`                               // Unique ID (e.g., "mouse_farm")
	Title            string  `yaml:"title" json:"title"`                         // Display name
	Description      string  `yaml:"description" json:"description"`             // Flavor text
	BaseCost         float64 `yaml:"base_cost" json:"base_cost"`                 // Price of every unit, and the base of the upgrade curve
	LevelRequirement int     `yaml:"level_requirement" json:"level_requirement"` // Minimum player level to see and buy
	BaseProduction   float64 `yaml:"base_production" json:"base_production"`     // Points per second per unit per level, before tier scaling
}

// MultiplierOffer is a purchasable, temporary click multiplier.
type MultiplierOffer struct {
	ID              string  `yaml:"id" json:"id"`
	Name            string  `yaml:"name" json:"name"`
	DurationSeconds int     `yaml:"duration_seconds" json:"duration_seconds"`
	Multiplier      float64 `yaml:"multiplier" json:"multiplier"`
	Cost            float64 `yaml:"cost" json:"cost"`
}

// Catalog is the root configuration struct, mapping to the entire 'catalog.yaml' file.
type Catalog struct {
	Buildings   []BuildingKind    `yaml:"buildings" json:"buildings"`
	Multipliers []MultiplierOffer `yaml:"multipliers" json:"multipliers"`
}

// BuildingState is the mutable per-kind record.
type BuildingState struct {
	Owned int `json:"owned"`
	Level int `json:"level"` // 1 means "unupgraded"
}

// ActiveMultiplier is a scoped click modifier with an absolute expiry.
type ActiveMultiplier struct {
	Multiplier float64   `json:"multiplier"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// PlayerState is the singleton aggregate holding every scalar of a game.
type PlayerState struct {
	Points                      float64            `json:"points"`
	ClickPower                  int                `json:"click_power"`
	ClickPowerUpgradesPurchased int                `json:"click_power_upgrades_purchased"`
	AutoClickers                int                `json:"auto_clickers"`
	PointsPerSecond             float64            `json:"points_per_second"` // Cache: always the sum of Production over all kinds
	PlayerLevel                 int                `json:"player_level"`
	HasAccepted                 bool               `json:"has_accepted"`
	ActiveMultipliers           []ActiveMultiplier `json:"active_multipliers"`
}

// State is everything a game needs to persist: the player plus one BuildingState per kind.
type State struct {
	Player    PlayerState              `json:"player"`
	Buildings map[string]BuildingState `json:"buildings"`
}

// BuildingView annotates a kind with the player's progress for the presentation layer.
type BuildingView struct {
	BuildingKind
	Tier        Tier    `json:"tier"`
	Owned       int     `json:"owned"`
	Level       int     `json:"level"`
	Production  float64 `json:"production"`   // Current points per second from this kind
	UpgradeCost float64 `json:"upgrade_cost"` // Price of the next level
	CanBuy      bool    `json:"can_buy"`
	CanUpgrade  bool    `json:"can_upgrade"`
	Display     Display `json:"display"`
}

// Display carries pre-formatted numbers so every client renders the same text.
type Display map[string]string

// View is the read-only picture of a game handed to the presentation layer.
type View struct {
	Player                PlayerState    `json:"player"`
	ClickValue            float64        `json:"click_value"`
	ClickMultiplier       float64        `json:"click_multiplier"`
	ClickPowerUpgradeCost float64        `json:"click_power_upgrade_cost"`
	AutoClickerCost       float64        `json:"auto_clicker_cost"`
	Buildings             []BuildingView `json:"buildings"`
	NextLocked            *BuildingView  `json:"next_locked,omitempty"`
	Display               Display        `json:"display"`
}
