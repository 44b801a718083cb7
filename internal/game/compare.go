package game

// Compare orders two combinations of the same size: negative when a is
// weaker, positive when a is stronger. Five-card hands compare by category
// first and key second; everything else compares by key.
func Compare(a, b Combination) int {
	if a.Type.IsFive() && b.Type.IsFive() && a.Type != b.Type {
		return int(a.Type) - int(b.Type)
	}
	return a.Key - b.Key
}

// Comparable reports whether two combinations may be weighed against each
// other at all: same card count and the same five-card status.
func Comparable(a, b Combination) bool {
	if a.Size() != b.Size() || a.Type.IsFive() != b.Type.IsFive() {
		return false
	}
	if !a.Type.IsFive() && a.Type != b.Type {
		return false
	}
	return true
}

// CanBeat checks whether candidate may be played over standing. A nil
// standing play is a fresh trick and accepts any legal combination; equal
// strength never beats.
func CanBeat(standing *Combination, candidate Combination) bool {
	if candidate.Type == Invalid {
		return false
	}
	if standing == nil {
		return true
	}
	if !Comparable(*standing, candidate) {
		return false
	}
	return Compare(candidate, *standing) > 0
}
