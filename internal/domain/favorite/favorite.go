// Package favorite holds each user's ordered list of favorite cars.
package favorite

import "context"

// Favorites maps a user ID to the car IDs they saved, in insertion order.
type Favorites map[string][]int

// Add appends carID to the user's list. It returns false if it was already there.
func (f Favorites) Add(userID string, carID int) bool {
	if f.Contains(userID, carID) {
		return false
	}
	f[userID] = append(f[userID], carID)
	return true
}

// Remove drops carID from the user's list. It returns false if it was absent.
func (f Favorites) Remove(userID string, carID int) bool {
	ids := f[userID]
	for i, id := range ids {
		if id == carID {
			f[userID] = append(ids[:i:i], ids[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether carID is one of the user's favorites.
func (f Favorites) Contains(userID string, carID int) bool {
	for _, id := range f[userID] {
		if id == carID {
			return true
		}
	}
	return false
}

// IDs returns a copy of the user's favorites, never nil.
func (f Favorites) IDs(userID string) []int {
	out := make([]int, len(f[userID]))
	copy(out, f[userID])
	return out
}

// Repository persists the favorites map. Update is an atomic read-modify-write;
// fn returns whether the map should be written back.
type Repository interface {
	Load(ctx context.Context) (Favorites, error)
	Update(ctx context.Context, fn func(Favorites) (bool, error)) error
}
