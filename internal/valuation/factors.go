package valuation

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// AdjustmentKind says how an adjustment changed the running value.
type AdjustmentKind string

const (
	KindBase     AdjustmentKind = "base"
	KindAdd      AdjustmentKind = "add"
	KindMultiply AdjustmentKind = "multiply"
	KindBlend    AdjustmentKind = "blend"
	KindClamp    AdjustmentKind = "clamp"
)

// Adjustment is one entry of an ordered log. Running is the value after the
// adjustment was applied.
type Adjustment struct {
	Step    string         `json:"step"`
	Label   string         `json:"label"`
	Kind    AdjustmentKind `json:"kind"`
	Amount  float64        `json:"amount"`
	Running float64        `json:"running"`
}

// FactorResult captures one factor's value and how it was reached.
type FactorResult struct {
	Name        string       `json:"name"`
	Value       float64      `json:"value"`
	Reason      string       `json:"reason"`
	Adjustments []Adjustment `json:"adjustments,omitempty"`
}

// Direction classifies a multiplicative factor for reporting.
func (f FactorResult) Direction() string {
	switch {
	case f.Value > 1.05:
		return "premium"
	case f.Value < 0.95:
		return "penalty"
	default:
		return "neutral"
	}
}

// chain accumulates a product and logs every multiplier that changes it.
type chain struct {
	step  string
	value float64
	log   []Adjustment
}

func newChain(step string, start float64) *chain {
	return &chain{step: step, value: start}
}

func (c *chain) mul(label string, f float64) {
	if f == 1.0 {
		return
	}
	c.value *= f
	c.log = append(c.log, Adjustment{Step: c.step, Label: label, Kind: KindMultiply, Amount: f, Running: c.value})
}

func (c *chain) add(label string, v float64) {
	c.value += v
	c.log = append(c.log, Adjustment{Step: c.step, Label: label, Kind: KindAdd, Amount: v, Running: c.value})
}

func (c *chain) clamp(floor, ceil float64) {
	v := clamp(c.value, floor, ceil)
	if v != c.value {
		c.value = v
		c.log = append(c.log, Adjustment{Step: c.step, Label: fmt.Sprintf("clamped to [%.2f, %.2f]", floor, ceil), Kind: KindClamp, Amount: v, Running: v})
	}
}

func (c *chain) ceil(limit float64) {
	if c.value > limit {
		c.value = limit
		c.log = append(c.log, Adjustment{Step: c.step, Label: fmt.Sprintf("capped at %.2f", limit), Kind: KindClamp, Amount: limit, Running: limit})
	}
}

func (c *chain) floor(limit float64) {
	if c.value < limit {
		c.value = limit
		c.log = append(c.log, Adjustment{Step: c.step, Label: fmt.Sprintf("raised to floor %.2f", limit), Kind: KindClamp, Amount: limit, Running: limit})
	}
}

func (c *chain) result(name string) FactorResult {
	return FactorResult{Name: name, Value: c.value, Reason: c.reason(), Adjustments: c.log}
}

func (c *chain) reason() string {
	if len(c.log) == 0 {
		return "no adjustments"
	}
	parts := lo.Map(c.log, func(a Adjustment, _ int) string {
		switch a.Kind {
		case KindMultiply:
			return fmt.Sprintf("%s x%.2f", a.Label, a.Amount)
		case KindAdd:
			return fmt.Sprintf("%s %+.2f", a.Label, a.Amount)
		default:
			return a.Label
		}
	})
	return strings.Join(parts, "; ")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	sort.Strings(keys)
	return keys
}

func finitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
