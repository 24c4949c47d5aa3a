// Package report serializes a batch run's results to and from JSON,
// matching the shape the original solver used for persisting strategy
// profiles.
package report

import (
	"encoding/json"
	"os"

	"github.com/google/uuid"

	"github.com/behrlich/blackjack-solver/pkg/shoe"
)

// Scenario identifies one (hand, dealer up-card, shoe) evaluated by a
// batch run.
type Scenario struct {
	PlayerTotal int         `json:"player_total"`
	PlayerAces  int         `json:"player_aces"`
	DealerShown int         `json:"dealer_shown"`
	Shoe        shoe.Counts `json:"shoe"`
}

// Decision is the strategist's and bettor's output for a Scenario.
type Decision struct {
	ShouldHit     bool    `json:"should_hit"`
	ShouldDouble  bool    `json:"should_double"`
	ShouldSplit   bool    `json:"should_split"`
	ExpectedValue float64 `json:"expected_value"`
	BetSize       float64 `json:"bet_size,omitempty"`
}

// Result pairs a Scenario with its Decision.
type Result struct {
	Scenario Scenario `json:"scenario"`
	Decision Decision `json:"decision"`
}

// Run is a complete batch run: every evaluated Result, tagged with a
// unique run ID and with the report format Version, for compatibility
// across report format revisions.
type Run struct {
	ID      string   `json:"id"`
	Version string   `json:"version"`
	Results []Result `json:"results"`
}

// currentVersion is bumped whenever Result's shape changes
// incompatibly.
const currentVersion = "1.0"

// NewRun assigns a fresh run ID to results.
func NewRun(results []Result) Run {
	return Run{
		ID:      uuid.NewString(),
		Version: currentVersion,
		Results: results,
	}
}

// ToJSON serializes the Run to indented JSON bytes.
func (r Run) ToJSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// FromJSON deserializes JSON bytes into a Run.
func FromJSON(data []byte) (Run, error) {
	var r Run
	if err := json.Unmarshal(data, &r); err != nil {
		return Run{}, err
	}
	return r, nil
}

// SaveToFile writes the Run to filename as JSON.
func (r Run) SaveToFile(filename string) error {
	data, err := r.ToJSON()
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// LoadFromFile reads a Run back from filename.
func LoadFromFile(filename string) (Run, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return Run{}, err
	}
	return FromJSON(data)
}
