package resources

import "fmt"

// Threshold table. Knowledge thresholds are exclusive, the rest inclusive.
const (
	HopeGameOver     = 0
	HopeCritical     = 20
	HopeWarning      = 40
	HealthCritical   = 30
	HealthWarning    = 50
	SuppliesCritical = 10
	SuppliesWarning  = 25
	KnowledgeMin     = 5
	KnowledgeWarning = 15
	SeedsDepleted    = 0
	SeedsWarning     = 2
)

// Level classifies a resource against its thresholds.
type Level uint8

const (
	Normal Level = iota
	Warning
	Critical
)

func (l Level) String() string {
	switch l {
	case Warning:
		return "warning"
	case Critical:
		return "critical"
	default:
		return "normal"
	}
}

func (l Level) MarshalText() ([]byte, error) { return []byte(l.String()), nil }

func (l *Level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "normal":
		*l = Normal
	case "warning":
		*l = Warning
	case "critical":
		*l = Critical
	default:
		return fmt.Errorf("unknown level %q", string(b))
	}
	return nil
}

// Status is the advisory reading of one resource.
type Status struct {
	Level        Level    `json:"level"`
	Message      string   `json:"message,omitempty"`
	Consequences []string `json:"consequences,omitempty"`
}

// CheckStatus classifies every ledger resource.
func CheckStatus(s Set) map[Kind]Status {
	return map[Kind]Status{
		Hope:      checkHope(s.Hope),
		Health:    checkHealth(s.Health),
		Supplies:  checkSupplies(s.Supplies),
		Knowledge: checkKnowledge(s.Knowledge),
		Seeds:     checkSeeds(s.Seeds),
	}
}

func checkHope(v float64) Status {
	switch {
	case v <= HopeGameOver:
		return Status{Critical, "All hope is lost.", []string{"Game over"}}
	case v <= HopeCritical:
		return Status{Critical, "Hope is nearly extinguished. The others are losing faith in you.",
			[]string{"NPCs become hostile", "Refuse cooperation", "Bad dialogue options only"}}
	case v <= HopeWarning:
		return Status{Warning, "Hope is running low.",
			[]string{"Reduced NPC trust gains", "Pessimistic dialogue options"}}
	}
	return Status{Level: Normal}
}

func checkHealth(v float64) Status {
	switch {
	case v <= HealthCritical:
		return Status{Critical, "Your body is failing.",
			[]string{"Reduced action success rates", "Slower plant growth", "Illness events"}}
	case v <= HealthWarning:
		return Status{Warning, "You feel weak and tired.",
			[]string{"Slightly reduced efficiency", "Increased rest requirements"}}
	}
	return Status{Level: Normal}
}

func checkSupplies(v float64) Status {
	switch {
	case v <= SuppliesCritical:
		return Status{Critical, "Supplies are nearly exhausted.",
			[]string{"Daily health loss", "NPCs consider leaving", "Desperate choices emerge"}}
	case v <= SuppliesWarning:
		return Status{Warning, "Supplies are running low. Rationing has begun.",
			[]string{"Increased tension with NPCs", "More frequent supply choices"}}
	}
	return Status{Level: Normal}
}

func checkKnowledge(v float64) Status {
	switch {
	case v < KnowledgeMin:
		return Status{Critical, "Your understanding of restoration is severely limited.",
			[]string{"Locked out of advanced plant species", "No science dialogue", "Suboptimal choices"}}
	case v < KnowledgeWarning:
		return Status{Warning, "Your knowledge of restoration is basic.",
			[]string{"Limited dialogue options", "Reduced choice effectiveness"}}
	}
	return Status{Level: Normal}
}

func checkSeeds(v float64) Status {
	switch {
	case v <= SeedsDepleted:
		return Status{Critical, "No seeds remain.",
			[]string{"Cannot plant new species", "Restoration progress halts", "Hopelessness spiral"}}
	case v <= SeedsWarning:
		return Status{Warning, "Only a few precious seeds remain.",
			[]string{"Limited planting options", "High stakes decisions"}}
	}
	return Status{Level: Normal}
}
