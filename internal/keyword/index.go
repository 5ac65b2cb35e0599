package keyword

// TermDictionary exposes indexed terms and their document counts to the
// spell checker. TermIndex implements it.
type TermDictionary interface {
	Terms() (map[string]int, error)
}

// FieldWeights maps field names to score multipliers.
type FieldWeights map[string]float64

// unknownFieldWeight applies to fields with no configured weight.
const unknownFieldWeight = 0.5

// Weight returns the multiplier for field.
func (w FieldWeights) Weight(field string) float64 {
	if v, ok := w[field]; ok {
		return v
	}
	return unknownFieldWeight
}

// DefaultFieldWeights returns the stock per-field weights.
func DefaultFieldWeights() FieldWeights {
	return FieldWeights{
		"title":       1.0,
		"description": 0.8,
		"content":     0.6,
		"keywords":    0.9,
		"tags":        0.7,
	}
}
