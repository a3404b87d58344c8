package forecast

// Ensemble reduces a set of per-algorithm results into one averaged
// result: each position is the arithmetic mean of the non-missing values
// at that position, or missing when no algorithm contributed. The
// combination is order-independent and deterministic.
func Ensemble(results map[string]Result) Result {
	length := 0
	for _, r := range results {
		if len(r.Values) > length {
			length = len(r.Values)
		}
	}

	out := make([]Value, length)
	for i := 0; i < length; i++ {
		var sum float64
		var count int
		for _, r := range results {
			if i < len(r.Values) && r.Values[i].Valid {
				sum += r.Values[i].Float64
				count++
			}
		}
		if count > 0 {
			out[i] = Some(sum / float64(count))
		}
	}
	return Result{Algorithm: AlgoEnsemble, Values: out}
}
