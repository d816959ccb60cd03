package catalog

import (
	"fmt"
	"time"
)

// WeekSeed returns the "<year>-<week>" string that fixes the featured
// rotation for the week containing t. Weeks start on Sunday and week 1
// contains January 1st.
func WeekSeed(t time.Time) string {
	jan1 := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
	days := t.YearDay() - 1
	week := (days + int(jan1.Weekday()) + 1 + 6) / 7
	return fmt.Sprintf("%d-%d", t.Year(), week)
}

// hashSeed folds s into a 32-bit seed as seed = seed*31 + c over its UTF-16
// code units.
func hashSeed(s string) uint32 {
	var seed uint32
	for _, r := range s {
		if r >= 0x10000 {
			r -= 0x10000
			seed = seed*31 + uint32(0xD800+(r>>10))
			seed = seed*31 + uint32(0xDC00+(r&0x3FF))
			continue
		}
		seed = seed*31 + uint32(r)
	}
	return seed
}

// mulberry32 is a small deterministic PRNG returning values in [0,1).
func mulberry32(seed uint32) func() float64 {
	return func() float64 {
		seed += 0x6D2B79F5
		t := seed
		t = (t ^ t>>15) * (t | 1)
		t ^= t + (t^t>>7)*(t|61)
		return float64(t^t>>14) / 4294967296
	}
}

// Pick chooses up to count distinct games from pool, deterministically for
// seedString.
func Pick(pool []Game, count int, seedString string) []Game {
	rand := mulberry32(hashSeed(seedString))
	used := make(map[int]bool, count)
	var chosen []Game
	for len(chosen) < count && len(chosen) < len(pool) {
		idx := int(rand() * float64(len(pool)))
		if used[idx] {
			continue
		}
		used[idx] = true
		chosen = append(chosen, pool[idx])
	}
	return chosen
}

// Featured returns the manually featured games followed by n games picked
// for the week of now from the rest of the catalog.
func (c *Catalog) Featured(n int, now time.Time) []Game {
	var manual, pool []Game
	for _, g := range c.games {
		if g.Featured {
			manual = append(manual, g)
		} else {
			pool = append(pool, g)
		}
	}
	return append(manual, Pick(pool, n, WeekSeed(now))...)
}
