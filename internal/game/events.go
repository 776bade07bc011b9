package game

// EventType names a state-change notification for the presentation layer.
type EventType string

const (
	EventPurchase    EventType = "purchase"
	EventUpgrade     EventType = "upgrade"
	EventClickPower  EventType = "click_power"
	EventAutoClicker EventType = "auto_clicker"
	EventMultiplier  EventType = "multiplier"
	EventLevelUp     EventType = "level_up"
	EventAccepted    EventType = "accepted"
	EventReset       EventType = "reset"
)

// Event is emitted by a successful mutation. Rejected operations emit nothing.
type Event struct {
	Type       EventType `json:"type"`
	BuildingID string    `json:"building_id,omitempty"`
	OfferID    string    `json:"offer_id,omitempty"`
	Level      int       `json:"level,omitempty"`
	Cost       float64   `json:"cost,omitempty"`
}

// Publisher receives events after the operation that produced them has completed.
type Publisher interface {
	Publish(Event)
}
