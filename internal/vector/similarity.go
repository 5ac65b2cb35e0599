package vector

// Cosine returns dot(a,b)/(|a||b|). It is 0 when either norm is 0.
func Cosine(a, b TFIDFVector) float64 {
	if a.Norm == 0 || b.Norm == 0 {
		return 0
	}
	small, large := a, b
	if len(small.Terms) > len(large.Terms) {
		small, large = large, small
	}
	idx := make(map[string]float64, len(large.Terms))
	for i, t := range large.Terms {
		idx[t] = large.Values[i]
	}
	var dot float64
	for i, t := range small.Terms {
		if w, ok := idx[t]; ok {
			dot += small.Values[i] * w
		}
	}
	sim := dot / (a.Norm * b.Norm)
	if sim > 1 {
		sim = 1
	}
	return sim
}

// MatchedTerms returns the terms of a that also carry weight in b, in a's order.
func MatchedTerms(a, b TFIDFVector) []string {
	in := make(map[string]bool, len(b.Terms))
	for i, t := range b.Terms {
		if b.Values[i] > 0 {
			in[t] = true
		}
	}
	var out []string
	for i, t := range a.Terms {
		if a.Values[i] > 0 && in[t] {
			out = append(out, t)
		}
	}
	return out
}
