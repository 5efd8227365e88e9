package booking

import "time"

// Reconcile corrects each booking in place and returns how many changed.
// Order and length of the slice are preserved.
func Reconcile(bookings []*Booking, now time.Time) int {
	changed := 0
	for _, b := range bookings {
		if b.Reconcile(now) {
			changed++
		}
	}
	return changed
}

// FilterActive returns bookings that are active at now. An empty userID matches every user.
func FilterActive(bookings []*Booking, userID string, now time.Time) []*Booking {
	return filter(bookings, userID, func(b *Booking) bool { return b.IsActiveAt(now) })
}

// FilterArchived returns bookings that belong in the archive at now. An empty userID matches every user.
func FilterArchived(bookings []*Booking, userID string, now time.Time) []*Booking {
	return filter(bookings, userID, func(b *Booking) bool { return b.IsArchivedAt(now) })
}

// FilterExpiring returns active bookings of userID ending within window of now.
func FilterExpiring(bookings []*Booking, userID string, now time.Time, window time.Duration, includeExpired bool) []*Booking {
	return filter(bookings, userID, func(b *Booking) bool {
		return b.IsExpiringWithin(now, window, includeExpired)
	})
}

func filter(bookings []*Booking, userID string, keep func(*Booking) bool) []*Booking {
	out := make([]*Booking, 0, len(bookings))
	for _, b := range bookings {
		if userID != "" && b.userID != userID {
			continue
		}
		if keep(b) {
			out = append(out, b)
		}
	}
	return out
}
