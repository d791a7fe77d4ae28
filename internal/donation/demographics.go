package donation

import (
	"encoding/json"
	"math"

	"github.com/erazemk/donations/internal/model"
)

// maxCount bounds any single count or quantity accepted from a request.
const maxCount = 1_000_000_000

// Demographics holds how many people from each group an outgoing donation served.
type Demographics struct {
	White  int
	Latino int
	Black  int
	Native int
	Asian  int
	Other  int
}

func (d Demographics) groups() []struct {
	name  string
	count int
} {
	return []struct {
		name  string
		count int
	}{
		{"whiteNum", d.White},
		{"latinoNum", d.Latino},
		{"blackNum", d.Black},
		{"nativeNum", d.Native},
		{"asianNum", d.Asian},
		{"otherNum", d.Other},
	}
}

// Aggregate returns the number of people served: the sum of all groups.
// Negative counts and a zero total are rejected.
func Aggregate(d Demographics) (int, error) {
	total := 0
	for _, g := range d.groups() {
		if g.count < 0 {
			return 0, invalid(g.name, "must be a non-negative integer, got %d", g.count)
		}
		total += g.count
	}
	if total == 0 {
		return 0, invalid("numberServed", "an outgoing donation must serve at least one person")
	}
	return total, nil
}

// Stats builds the stored record for an outgoing donation.
func (d Demographics) Stats(donationID int64, served int) model.OutgoingStats {
	return model.OutgoingStats{
		DonationID:   donationID,
		NumberServed: served,
		WhiteNum:     d.White,
		LatinoNum:    d.Latino,
		BlackNum:     d.Black,
		NativeNum:    d.Native,
		AsianNum:     d.Asian,
		OtherNum:     d.Other,
	}
}

// ParseCount converts a JSON number into a count. An empty number is zero.
// Fractional and out-of-range values are rejected; the sign is left for the
// workflow to check.
func ParseCount(field string, n json.Number) (int, error) {
	if n == "" {
		return 0, nil
	}

	if i, err := n.Int64(); err == nil {
		if i > maxCount || i < -maxCount {
			return 0, invalid(field, "value %s is out of range", n)
		}
		return int(i), nil
	}

	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
		return 0, invalid(field, "value %q is not a number", n.String())
	}
	if f != math.Trunc(f) {
		return 0, invalid(field, "must be an integer, got %s", n)
	}
	if f > maxCount || f < -maxCount {
		return 0, invalid(field, "value %s is out of range", n)
	}
	return int(f), nil
}
