package combatant

// EventKind identifies a combatant notification.
type EventKind int

const (
	// EventHealthChanged fires when health strictly decreases from a hit or
	// strictly increases from regeneration. Value is the new current health.
	EventHealthChanged EventKind = iota
	// EventBarUpdated carries a bar's current and max for fill-ratio display.
	EventBarUpdated
	// EventLevelUp fires once per level gained. Value is the new level.
	EventLevelUp
	// EventDied fires once when the combatant dies; the entity should be deactivated.
	EventDied
	// EventStatsChanged fires after a stat recompute (purity, corruption, stat points).
	EventStatsChanged
	// EventExhausted fires when a mana or stamina exhaustion lock begins.
	EventExhausted
	// EventRecovered fires when an exhaustion lock expires.
	EventRecovered
)

// String returns a short label for the kind.
func (k EventKind) String() string {
	switch k {
	case EventHealthChanged:
		return "health_changed"
	case EventBarUpdated:
		return "bar_updated"
	case EventLevelUp:
		return "level_up"
	case EventDied:
		return "died"
	case EventStatsChanged:
		return "stats_changed"
	case EventExhausted:
		return "exhausted"
	case EventRecovered:
		return "recovered"
	default:
		return "unknown"
	}
}

// Bar names a displayable resource bar.
type Bar int

const (
	BarHealth Bar = iota
	BarMana
	BarStamina
	BarExp
)

// String returns the bar name.
func (b Bar) String() string {
	switch b {
	case BarHealth:
		return "health"
	case BarMana:
		return "mana"
	case BarStamina:
		return "stamina"
	case BarExp:
		return "exp"
	default:
		return "unknown"
	}
}

// Event is a notification emitted to observers.
type Event struct {
	Kind        EventKind
	CombatantID string
	Bar         Bar
	Value       float64
	Max         float64
}

// Ratio returns Value/Max for bar events, or 0 when Max is not positive.
func (e Event) Ratio() float64 {
	if e.Max <= 0 {
		return 0
	}
	return e.Value / e.Max
}

// Observer receives combatant notifications synchronously, in emission order.
type Observer interface {
	OnCombatEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

// OnCombatEvent calls f(e).
func (f ObserverFunc) OnCombatEvent(e Event) { f(e) }

// Recorder is an Observer that keeps every event it receives.
type Recorder struct {
	Events []Event
}

// OnCombatEvent appends e.
func (r *Recorder) OnCombatEvent(e Event) { r.Events = append(r.Events, e) }

// OfKind returns the recorded events of kind k in order.
func (r *Recorder) OfKind(k EventKind) []Event {
	var out []Event
	for _, e := range r.Events {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() { r.Events = nil }
