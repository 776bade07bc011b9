package game

import (
	"sort"
	"strconv"

	"github.com/everforgeworks/data-empire/internal/format"
)

// AvailableBuildings lists every kind the player level has unlocked,
// annotated with progress, cheapest first.
func (e *Engine) AvailableBuildings() []BuildingView {
	views := []BuildingView{}
	for _, kind := range e.catalog.Buildings {
		if kind.LevelRequirement <= e.state.Player.PlayerLevel {
			views = append(views, e.buildingView(kind))
		}
	}
	sort.SliceStable(views, func(i, j int) bool {
		return views[i].BaseCost < views[j].BaseCost
	})
	return views
}

// NextLockedBuilding previews the cheapest kind still above the player level.
func (e *Engine) NextLockedBuilding() (BuildingView, bool) {
	var next *BuildingKind
	for i, kind := range e.catalog.Buildings {
		if kind.LevelRequirement <= e.state.Player.PlayerLevel {
			continue
		}
		if next == nil || kind.BaseCost < next.BaseCost {
			next = &e.catalog.Buildings[i]
		}
	}
	if next == nil {
		return BuildingView{}, false
	}
	return e.buildingView(*next), true
}

func (e *Engine) buildingView(kind BuildingKind) BuildingView {
	st := e.state.Buildings[kind.ID]
	production := Production(kind, st.Level, st.Owned)
	upgradeCost := UpgradeCost(kind, st.Level)

	return BuildingView{
		BuildingKind: kind,
		Tier:         kind.Tier(),
		Owned:        st.Owned,
		Level:        st.Level,
		Production:   production,
		UpgradeCost:  upgradeCost,
		CanBuy:       e.CanBuyBuilding(kind.ID),
		CanUpgrade:   e.CanUpgradeBuilding(kind.ID),
		Display: Display{
			"cost":         format.Points(kind.BaseCost),
			"upgrade_cost": format.Points(upgradeCost),
			"production":   format.Rate(production),
			// Marginal rate of the next unit, same formula as the cache
			"next_unit": format.Rate(Production(kind, st.Level, st.Owned+1) - production),
		},
	}
}

// View assembles the read-only picture of the game for the presentation layer.
func (e *Engine) View() View {
	st := e.State()
	v := View{
		Player:                st.Player,
		ClickValue:            e.ClickValue(),
		ClickMultiplier:       e.ClickMultiplier(),
		ClickPowerUpgradeCost: e.ClickPowerUpgradeCost(),
		AutoClickerCost:       e.AutoClickerCost(),
		Buildings:             e.AvailableBuildings(),
		Display: Display{
			"points":            format.Points(st.Player.Points),
			"points_per_second": format.Rate(st.Player.PointsPerSecond),
			"click_value":       format.Points(e.ClickValue()),
			"level":             strconv.Itoa(st.Player.PlayerLevel),
		},
	}
	if next, ok := e.NextLockedBuilding(); ok {
		v.NextLocked = &next
	}
	return v
}
