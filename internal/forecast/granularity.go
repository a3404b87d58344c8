package forecast

// Granularity is the sampling interval of a cost series.
type Granularity string

const (
	Daily   Granularity = "daily"
	Monthly Granularity = "monthly"
)

// InferGranularity classifies a series as daily or monthly. If every
// timestamp falls on the first day of its month the series is monthly.
// Otherwise a regular month-sized spacing between consecutive points also
// counts as monthly. Everything else is daily. There is no error path.
func InferGranularity(s Series) Granularity {
	if s.Len() == 0 {
		return Daily
	}

	firstOfMonth := true
	for i := 0; i < s.Len(); i++ {
		if s.At(i).TS.Day() != 1 {
			firstOfMonth = false
			break
		}
	}
	if firstOfMonth {
		return Monthly
	}

	if s.Len() > 1 && monthlySpacing(s) {
		return Monthly
	}
	return Daily
}

// monthlySpacing reports whether every gap between consecutive points is
// between 28 and 31 days, i.e. a calendar month step.
func monthlySpacing(s Series) bool {
	for i := 1; i < s.Len(); i++ {
		days := s.At(i).TS.Sub(s.At(i - 1).TS).Hours() / 24
		if days < 28 || days > 31 {
			return false
		}
	}
	return true
}
