/*
Package game
File: economy.go
Description:
    Handles the economic operations of a game.
    This includes:
    1. Manual clicks and the click multipliers (auto clickers, timed offers).
    2. Buying and upgrading buildings, with incremental upkeep of the production cache.
    3. The passive tick: accrual, multiplier expiry and player level derivation.

    Every precondition failure is a silent no-op: the presentation layer is
    expected to disable unaffordable actions, and the engine re-checks anyway.
*/

package game

import "time"

// Click grants the current click value. Ignored before onboarding.
func (e *Engine) Click() {
	if !e.state.Player.HasAccepted {
		return
	}
	e.state.Player.Points += e.ClickValue()
	e.dirty = true
}

// ClickValue is clickPower * (1 + autoClickers * 0.1) * active timed multipliers.
func (e *Engine) ClickValue() float64 {
	p := e.state.Player
	return float64(p.ClickPower) * (1 + float64(p.AutoClickers)*AutoClickerBonus) * e.ClickMultiplier()
}

// ClickMultiplier is 1 plus the bonus part of every unexpired multiplier.
// Two concurrent 2x offers yield 3x, not 4x.
func (e *Engine) ClickMultiplier() float64 {
	now := e.now()
	total := 1.0
	for _, m := range e.state.Player.ActiveMultipliers {
		if m.ExpiresAt.After(now) {
			total += m.Multiplier - 1
		}
	}
	return total
}

// BuyBuilding purchases one unit of a kind.
func (e *Engine) BuyBuilding(id string) {
	kind, ok := e.catalog.Building(id)
	if !ok {
		return
	}
	p := &e.state.Player
	if p.PlayerLevel < kind.LevelRequirement || p.Points < kind.BaseCost {
		return
	}

	st := e.state.Buildings[id]
	before := Production(kind, st.Level, st.Owned)
	st.Owned++
	after := Production(kind, st.Level, st.Owned)

	e.state.Buildings[id] = st
	p.Points -= kind.BaseCost
	p.PointsPerSecond += after - before

	e.emit(Event{Type: EventPurchase, BuildingID: id, Cost: kind.BaseCost})
}

// CanBuyBuilding reports whether BuyBuilding would succeed right now.
func (e *Engine) CanBuyBuilding(id string) bool {
	kind, ok := e.catalog.Building(id)
	if !ok {
		return false
	}
	p := e.state.Player
	return p.PlayerLevel >= kind.LevelRequirement && p.Points >= kind.BaseCost
}

// UpgradeBuilding raises a kind's level by one.
func (e *Engine) UpgradeBuilding(id string) {
	kind, ok := e.catalog.Building(id)
	if !ok {
		return
	}
	st := e.state.Buildings[id]
	cost := UpgradeCost(kind, st.Level)
	p := &e.state.Player
	if st.Owned <= 0 || p.Points < cost {
		return
	}

	// Delta taken at the current owned count, pre- vs post-upgrade level.
	before := Production(kind, st.Level, st.Owned)
	st.Level++
	after := Production(kind, st.Level, st.Owned)

	e.state.Buildings[id] = st
	p.Points -= cost
	p.PointsPerSecond += after - before

	e.emit(Event{Type: EventUpgrade, BuildingID: id, Level: st.Level, Cost: cost})
}

// BuildingUpgradeCost quotes the next upgrade of a kind.
func (e *Engine) BuildingUpgradeCost(id string) (float64, bool) {
	kind, ok := e.catalog.Building(id)
	if !ok {
		return 0, false
	}
	return UpgradeCost(kind, e.state.Buildings[id].Level), true
}

// CanUpgradeBuilding reports whether UpgradeBuilding would succeed right now.
func (e *Engine) CanUpgradeBuilding(id string) bool {
	cost, ok := e.BuildingUpgradeCost(id)
	if !ok {
		return false
	}
	return e.state.Buildings[id].Owned > 0 && e.state.Player.Points >= cost
}

// BuyClickPowerUpgrade adds one click power at a geometric price.
func (e *Engine) BuyClickPowerUpgrade() {
	p := &e.state.Player
	cost := e.ClickPowerUpgradeCost()
	if p.Points < cost {
		return
	}
	p.Points -= cost
	p.ClickPower++
	p.ClickPowerUpgradesPurchased++

	e.emit(Event{Type: EventClickPower, Level: p.ClickPower, Cost: cost})
}

// ClickPowerUpgradeCost quotes the next click-power upgrade.
func (e *Engine) ClickPowerUpgradeCost() float64 {
	return ClickPowerUpgradeCost(e.state.Player.ClickPowerUpgradesPurchased)
}

// BuyAutoClicker adds one auto clicker (+10% click value each).
func (e *Engine) BuyAutoClicker() {
	p := &e.state.Player
	cost := e.AutoClickerCost()
	if p.Points < cost {
		return
	}
	p.Points -= cost
	p.AutoClickers++

	e.emit(Event{Type: EventAutoClicker, Level: p.AutoClickers, Cost: cost})
}

// AutoClickerCost quotes the next auto clicker.
func (e *Engine) AutoClickerCost() float64 {
	return AutoClickerCost
}

// BuyMultiplier starts a timed click multiplier from the catalog offers.
func (e *Engine) BuyMultiplier(offerID string) {
	offer, ok := e.catalog.Multiplier(offerID)
	if !ok {
		return
	}
	p := &e.state.Player
	if p.Points < offer.Cost {
		return
	}
	p.Points -= offer.Cost
	p.ActiveMultipliers = append(p.ActiveMultipliers, ActiveMultiplier{
		Multiplier: offer.Multiplier,
		ExpiresAt:  e.now().Add(time.Duration(offer.DurationSeconds) * time.Second),
	})

	e.emit(Event{Type: EventMultiplier, OfferID: offerID, Cost: offer.Cost})
}

// Tick advances the game by elapsed seconds. Ignored before onboarding.
func (e *Engine) Tick(elapsed float64) {
	p := &e.state.Player
	if !p.HasAccepted {
		return
	}

	// 1. Lazily purge expired multipliers
	e.purgeMultipliers()

	// 2. Passive accrual
	if gained := p.PointsPerSecond * elapsed; gained > 0 {
		p.Points += gained
		e.dirty = true
	}

	// 3. Level derivation. The level does not regress within a game.
	if lvl := LevelFor(p.PointsPerSecond); lvl > p.PlayerLevel {
		p.PlayerLevel = lvl
		e.emit(Event{Type: EventLevelUp, Level: lvl})
	}
}

func (e *Engine) purgeMultipliers() {
	now := e.now()
	active := e.state.Player.ActiveMultipliers
	kept := active[:0]
	for _, m := range active {
		if m.ExpiresAt.After(now) {
			kept = append(kept, m)
		}
	}
	if len(kept) != len(active) {
		e.state.Player.ActiveMultipliers = kept
		e.dirty = true
	}
}
