package quality

// IsCompleted reports whether a result counts toward execution progress.
// OK and NG both count; SKIP does not.
func IsCompleted(status ItemStatus) bool {
	return status != ItemSkip
}

// CountCompleted counts non-SKIP results.
func CountCompleted(results []ExecutionItemResult) int {
	n := 0
	for _, r := range results {
		if IsCompleted(r.Status) {
			n++
		}
	}
	return n
}

// Percent is floor(completed*100/total), or 0 when total is not positive.
// It is not clamped: completed may exceed total when results reference
// checklist items outside the execution's checklist.
func Percent(completed int, total int) int {
	if total <= 0 {
		return 0
	}
	return completed * 100 / total
}

// ProjectProgress is the maximum of the given execution progress values, 0 for none.
func ProjectProgress(progresses []int) int {
	best := 0
	for i, p := range progresses {
		if i == 0 || p > best {
			best = p
		}
	}
	return best
}

// ResolveItemOrders assigns each item's list index as its order unless an explicit order is given.
func ResolveItemOrders(explicit []*int) []int {
	out := make([]int, len(explicit))
	for i, o := range explicit {
		if o != nil {
			out[i] = *o
			continue
		}
		out[i] = i
	}
	return out
}

// DuplicateCheckItem returns the first check item id repeated in ids.
func DuplicateCheckItem(ids []uint64) (uint64, bool) {
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return id, true
		}
		seen[id] = struct{}{}
	}
	return 0, false
}

// ValidateCheckItem checks the numeric configuration of a check item.
func ValidateCheckItem(item CheckItem) error {
	if item.MinValue != nil && item.MaxValue != nil && *item.MinValue > *item.MaxValue {
		return ErrBoundsInverted
	}
	if item.DecimalPlaces != nil && (*item.DecimalPlaces < 0 || *item.DecimalPlaces > 10) {
		return ErrDecimalPlaces
	}
	return nil
}

func ValidateStoredProgress(p int) error {
	if p < 0 || p > 100 {
		return ErrProgressRange
	}
	return nil
}
