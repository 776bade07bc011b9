/*
Package game
File: mechanics.go
Description:
    Contains the pure formulas of the economy.
    This includes tier classification, production scaling, upgrade and
    click-power pricing, and the derivation of the player level.
    It serves as the rules engine: nothing here reads or mutates state.
*/

package game

import "math"

const (
	// DefaultTickSeconds is the fraction of a second every scheduler tick represents (10 Hz).
	DefaultTickSeconds = 0.1

	ClickPowerBaseCost   = 20.0
	ClickPowerCostGrowth = 1.5

	// AutoClickerCost is flat; every unit adds AutoClickerBonus to the click multiplier.
	AutoClickerCost  = 50.0
	AutoClickerBonus = 0.1

	earlyTierMaxLevel = 5
	midTierMaxLevel   = 50
)

// TierFor classifies a level requirement.
func TierFor(levelRequirement int) Tier {
	switch {
	case levelRequirement <= earlyTierMaxLevel:
		return TierEarly
	case levelRequirement <= midTierMaxLevel:
		return TierMid
	default:
		return TierLate
	}
}

// Tier returns the derived tier of the kind.
func (k BuildingKind) Tier() Tier {
	return TierFor(k.LevelRequirement)
}

// TierMultiplier is the geometric growth of upgrade prices.
// Cheaper, earlier content climbs faster.
func TierMultiplier(t Tier) float64 {
	switch t {
	case TierEarly:
		return 1.75
	case TierMid:
		return 1.6
	default:
		return 1.5
	}
}

// ScalingPower is the exponent applied to the building level in Production.
func ScalingPower(t Tier) float64 {
	switch t {
	case TierEarly:
		return 0.9
	case TierMid:
		return 0.95
	default:
		return 1.0
	}
}

// Production is the one formula for points per second of a kind.
// The aggregate cache, the recomputation and every display value go through it.
func Production(kind BuildingKind, level, owned int) float64 {
	if owned <= 0 {
		return 0
	}
	return kind.BaseProduction * float64(owned) * math.Pow(float64(level), ScalingPower(kind.Tier()))
}

// UpgradeCost prices the step from level to level+1.
func UpgradeCost(kind BuildingKind, level int) float64 {
	if level < 1 {
		level = 1
	}
	return math.Floor(kind.BaseCost * math.Pow(TierMultiplier(kind.Tier()), float64(level-1)))
}

// ClickPowerUpgradeCost prices the next click-power upgrade.
func ClickPowerUpgradeCost(purchased int) float64 {
	return math.Floor(ClickPowerBaseCost * math.Pow(ClickPowerCostGrowth, float64(purchased)))
}

// LevelFor derives the player level from the production rate.
// Formula: max(1, floor(log10(pps) + 1)), and 1 when nothing is produced.
func LevelFor(pointsPerSecond float64) int {
	if pointsPerSecond <= 0 || math.IsNaN(pointsPerSecond) {
		return 1
	}
	digits := math.Floor(math.Log10(pointsPerSecond))
	// Log10 can land one ulp off an exact power of ten.
	if math.Pow(10, digits+1) <= pointsPerSecond {
		digits++
	} else if math.Pow(10, digits) > pointsPerSecond {
		digits--
	}

	level := int(digits) + 1
	if level < 1 {
		return 1
	}
	return level
}
