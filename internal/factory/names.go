package factory

import (
	"fmt"
	"strings"
	"sync"
)

var firstNames = []string{
	"Silent", "Golden", "Special", "Gold", "Tokai", "Mejiro", "Rice", "Super", "Oguri", "Symboli",
	"Daiwa", "Vodka", "Grass", "El", "Seiun", "Air", "Manhattan", "Agnes", "Narita", "Winning",
	"Sakura", "Haru", "Twin", "King", "Nice", "Matikane", "Eishin", "Fine", "Biko", "Curren",
	"Smart", "Admire", "Deep", "Meisho", "Kitasan", "Satono", "Orfe", "Duramente", "Still", "Cheval",
}

var lastNames = []string{
	"Suzuka", "Ship", "Week", "Teio", "Ardan", "Shower", "Creek", "Cap", "Rudolf", "Scarlet",
	"Wonder", "Condor", "Sky", "Groove", "Cafe", "Tachyon", "Brian", "Ticket", "Chiyono", "Bakushin",
	"Urara", "Turbo", "Halo", "Nature", "Fukukitaru", "Flash", "Motion", "Pegasus", "Chan", "Falcon",
	"Vega", "Impact", "Doto", "Black", "Diamond", "Crown", "Verse", "Ocean", "Arrow", "Comet",
}

var skillNames = []string{
	"Thunder Hooves", "Victory Shot", "Shooting Star", "Final Push", "Emperor's Pride",
	"Red Ace", "Blazing Pride", "Angling", "Clear Heart", "Flowery Maneuver",
}

// NameRegistry tracks the names in use so the generator never hands out a duplicate.
// It is safe for concurrent use.
type NameRegistry struct {
	mu    sync.Mutex
	taken map[string]struct{}
}

// NewNameRegistry creates a registry pre-loaded with existing names
func NewNameRegistry(existing ...string) *NameRegistry {
	r := &NameRegistry{taken: make(map[string]struct{}, len(existing))}
	for _, name := range existing {
		r.Reserve(name)
	}
	return r
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Reserve marks a name as taken. It reports false if the name was already taken.
func (r *NameRegistry) Reserve(name string) bool {
	key := normalizeName(name)
	if key == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.taken[key]; ok {
		return false
	}
	r.taken[key] = struct{}{}
	return true
}

// Release frees a name, typically after a horse is deleted
func (r *NameRegistry) Release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.taken, normalizeName(name))
}

// Taken reports whether a name is in use
func (r *NameRegistry) Taken(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.taken[normalizeName(name)]
	return ok
}

// Len returns the number of reserved names
func (r *NameRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.taken)
}

var numerals = []string{"II", "III", "IV", "V", "VI", "VII", "VIII", "IX", "X"}

// suffixed returns the n-th generation name, e.g. "Gold Ship II"
func suffixed(last string, n int) string {
	if n < len(numerals) {
		return last + " " + numerals[n]
	}
	return fmt.Sprintf("%s %d", last, n+2)
}
