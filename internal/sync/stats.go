package sync

// Stats is the immutable outcome of a copy operation. Recursive calls each
// return their own Stats; callers combine them with Add instead of threading
// a shared accumulator through the recursion.
type Stats struct {
	Copied  int
	Skipped int
}

// Add returns the combined counts of s and other.
func (s Stats) Add(other Stats) Stats {
	return Stats{
		Copied:  s.Copied + other.Copied,
		Skipped: s.Skipped + other.Skipped,
	}
}

// Clean reports whether the run copied nothing.
func (s Stats) Clean() bool {
	return s.Copied == 0
}
