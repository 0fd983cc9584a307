package contract

// FirstRunes returns the first n runes of s, or s itself when it is shorter.
// n <= 0 yields "".
func FirstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
