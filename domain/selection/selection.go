// Package selection implements the draw: a uniform random subset sampler
// over the current member list. Every subset of the drawn size is equally
// likely. Both store backends delegate here so fairness lives in one place.
package selection

import (
	"math/rand"

	"github.com/kujilab/kuji/domain/model"
)

// Sample draws min(count, len(members)) members without replacement. The
// input slice is never modified; the draw works on a copy via a partial
// Fisher-Yates shuffle, so only as many swaps happen as names are drawn.
func Sample(members []model.Participant, count int) []model.Participant {
	if count <= 0 || len(members) == 0 {
		return []model.Participant{}
	}
	if count > len(members) {
		count = len(members)
	}

	pool := make([]model.Participant, len(members))
	copy(pool, members)

	for i := 0; i < count; i++ {
		j := i + rand.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}

	return pool[:count]
}

// Names projects a drawn subset onto display names, the only part of a
// participant that selection results expose.
func Names(selected []model.Participant) []string {
	names := make([]string, 0, len(selected))
	for _, p := range selected {
		names = append(names, p.Name)
	}
	return names
}
