package car

import "math/rand"

// Suggest picks up to n distinct available cars other than excludeID in random order.
func Suggest(cars []*Car, excludeID, n int) []*Car {
	candidates := make([]*Car, 0, len(cars))
	for _, c := range cars {
		if c.id != excludeID && c.available {
			candidates = append(candidates, c)
		}
	}

	rand.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	if n < 0 {
		n = 0
	}
	if n < len(candidates) {
		candidates = candidates[:n]
	}
	return candidates
}
