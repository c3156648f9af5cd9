package exam

// TimerBank keeps the banked seconds left for every question of a sequence.
// Only the active question is ticked; the others stay frozen. Callers
// serialise access.
type TimerBank struct {
	remaining map[string]int
}

// NewTimerBank gives every question the same allowance.
func NewTimerBank(ids []string, allowance int) *TimerBank {
	b := &TimerBank{remaining: make(map[string]int, len(ids))}
	for _, id := range ids {
		b.remaining[id] = allowance
	}
	return b
}

// Remaining returns the seconds left for a question.
func (b *TimerBank) Remaining(id string) int {
	return b.remaining[id]
}

// Tick consumes one second of a question's allowance, floored at zero.
// Ticks on an expired or unknown question are ignored.
func (b *TimerBank) Tick(id string) int {
	left, ok := b.remaining[id]
	if !ok || left <= 0 {
		return 0
	}
	left--
	b.remaining[id] = left
	return left
}

// Expired reports whether the question ran out of time.
func (b *TimerBank) Expired(id string) bool {
	left, ok := b.remaining[id]
	return ok && left <= 0
}

// Snapshot copies the current state for the navigation policy.
func (b *TimerBank) Snapshot() map[string]int {
	out := make(map[string]int, len(b.remaining))
	for id, left := range b.remaining {
		out[id] = left
	}
	return out
}
