package coverage

// percentFactor converts a covered ratio to a percentage.
const percentFactor = 100

// Counter accumulates missed and covered totals for one coverage
// category. Accumulation is field-wise addition; the aggregation layers
// above never define arithmetic of their own.
type Counter struct {
	Missed  int `json:"missed"  yaml:"missed"`
	Covered int `json:"covered" yaml:"covered"`
}

// Add returns the field-wise sum of two counters.
func (c Counter) Add(other Counter) Counter {
	return Counter{
		Missed:  c.Missed + other.Missed,
		Covered: c.Covered + other.Covered,
	}
}

// Total returns the number of counted items.
func (c Counter) Total() int {
	return c.Missed + c.Covered
}

// CoveredRatio returns the covered share in [0, 1], or 0 when nothing
// was counted.
func (c Counter) CoveredRatio() float64 {
	total := c.Total()
	if total == 0 {
		return 0
	}

	return float64(c.Covered) / float64(total)
}

// CoveredPercent returns the covered share as a percentage.
func (c Counter) CoveredPercent() float64 {
	return c.CoveredRatio() * percentFactor
}

// Counters carries one counter per coverage category. The categories
// themselves are opaque to the registry and aggregator: they route whole
// Counters values and let Merge do the arithmetic.
type Counters struct {
	Instructions Counter `json:"instructions" yaml:"instructions"`
	Branches     Counter `json:"branches"     yaml:"branches"`
	Lines        Counter `json:"lines"        yaml:"lines"`
	Complexity   Counter `json:"complexity"   yaml:"complexity"`
	Methods      Counter `json:"methods"      yaml:"methods"`
}

// Merge returns the category-wise sum of two counter sets.
func (c Counters) Merge(other Counters) Counters {
	return Counters{
		Instructions: c.Instructions.Add(other.Instructions),
		Branches:     c.Branches.Add(other.Branches),
		Lines:        c.Lines.Add(other.Lines),
		Complexity:   c.Complexity.Add(other.Complexity),
		Methods:      c.Methods.Add(other.Methods),
	}
}

// LineHit records execution detail for one source line: the line number,
// how often it was executed, and its branch counter when the line holds
// branching instructions.
type LineHit struct {
	Nr       int     `json:"nr"       yaml:"nr"`
	Hits     int     `json:"hits"     yaml:"hits"`
	Branches Counter `json:"branches" yaml:"branches"`
}

// mergeLineHits accumulates per-line detail into dst, summing hits and
// branch counters for lines reported by more than one unit.
func mergeLineHits(dst map[int]LineHit, lines []LineHit) {
	for _, line := range lines {
		merged, ok := dst[line.Nr]
		if !ok {
			dst[line.Nr] = line

			continue
		}

		merged.Hits += line.Hits
		merged.Branches = merged.Branches.Add(line.Branches)
		dst[line.Nr] = merged
	}
}
