package event

import (
	"fmt"
	"math/rand/v2"
	"time"
)

var (
	demoGenres = []string{"Jazz", "Techno", "Indie", "Opera", "Salsa", "Folk", "Hip Hop", "Ambient"}
	demoKinds  = []string{"Night", "Sessions", "Brunch", "Festival", "Showcase", "Live"}
	demoHosts  = []string{"Blue Note Collective", "Warehouse Project", "Casa Latina", "Northern Lights", "Opera Circle"}
	demoVenues = []string{"Kesselhaus", "Sala Apolo", "Paradiso", "Jazzhaus", "Roundhouse", "Tresor"}
	demoCities = []string{"Berlin", "Barcelona", "Amsterdam", "Vienna", "London", "Lisbon"}
	demoArtist = []string{
		"Nina Calloway", "The Midnight Four", "DJ Orbit", "Marta Ruiz", "Kofi Mensah",
		"Lena Vogel", "Satellite Choir", "Ibrahim Haddad", "Aurora Trio", "Tomás Brito",
	}
	demoStatus = []Status{StatusPublished, StatusPublished, StatusPublished, StatusDraft, StatusCancelled, StatusCompleted}
)

// Demo generates n plausible events around now. The same seed yields the same
// events apart from IDs.
func Demo(n int, now time.Time, seed uint64) []*Event {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	pick := func(s []string) string { return s[rng.IntN(len(s))] }

	events := make([]*Event, 0, n)
	for i := 0; i < n; i++ {
		artists := make([]string, 1+rng.IntN(3))
		for j := range artists {
			artists[j] = pick(demoArtist)
		}

		capacity := 50 * (1 + rng.IntN(40))
		var price *float64
		if rng.IntN(5) > 0 {
			p := float64(5+rng.IntN(120)) + float64(rng.IntN(4))*0.25
			price = &p
		}

		status := demoStatus[rng.IntN(len(demoStatus))]
		startsAt := now.Add(time.Duration(rng.IntN(24*120)-24*30) * time.Hour).Truncate(30 * time.Minute)
		if startsAt.Before(now) && status == StatusPublished {
			status = StatusCompleted
		}

		e, err := New(Params{
			Title:       fmt.Sprintf("%s %s", pick(demoGenres), pick(demoKinds)),
			Host:        pick(demoHosts),
			Artists:     artists,
			Venue:       pick(demoVenues),
			City:        pick(demoCities),
			StartsAt:    startsAt,
			Price:       price,
			Capacity:    capacity,
			TicketsSold: rng.IntN(capacity + 1),
			Status:      string(status),
		})
		if err != nil {
			panic(err)
		}
		created := startsAt.Add(-time.Duration(24*(7+rng.IntN(60))) * time.Hour)
		e.CreatedAt, e.UpdatedAt = created, created.Add(time.Duration(rng.IntN(72))*time.Hour)
		events = append(events, e)
	}
	return events
}
