package bot

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jordanella.com/animix-go/internal/game"
)

func breedingGame(dnaJSON string) *fakeGame {
	return newFakeGame().
		reply(game.OpPetDNAList, dnaJSON).
		reply(game.OpPetMix, `{"pet":{"name":"Kit","star":2,"class":"water"}}`)
}

func TestBreedingSingleMotherNoFathers(t *testing.T) {
	f := breedingGame(`[{"item_id":"A","amount":1,"can_mom":true}]`)
	b := newTestBot(f, nil)

	summary := b.RunBreedingCycle(context.Background())

	assert.True(t, summary.NoPair)
	assert.Empty(t, summary.Pairs)
	assert.Empty(t, f.callsTo(game.OpPetMix))
	assert.Equal(t, 1, summary.MothersLeft)
}

func TestBreedingNoMothers(t *testing.T) {
	f := breedingGame(`[{"item_id":7,"amount":"3","can_mom":false}]`)
	b := newTestBot(f, nil)

	summary := b.RunBreedingCycle(context.Background())

	assert.True(t, summary.NoMothers)
	assert.Empty(t, f.callsTo(game.OpPetMix))
}

func TestBreedingPairsMothersWithFathers(t *testing.T) {
	f := breedingGame(`[
		{"item_id":1,"amount":2,"can_mom":true},
		{"item_id":2,"amount":3,"can_mom":false}
	]`)
	b := newTestBot(f, nil)

	summary := b.RunBreedingCycle(context.Background())

	require.Len(t, summary.Pairs, 2)
	assert.Equal(t, 0, summary.MothersLeft)
	assert.Equal(t, 1, summary.FathersLeft)
	for _, call := range f.callsTo(game.OpPetMix) {
		assert.Equal(t, float64(1), call.Body["mom_id"])
		assert.Equal(t, float64(2), call.Body["dad_id"])
	}
}

func TestBreedingFallsBackToNextMother(t *testing.T) {
	f := breedingGame(`[
		{"item_id":"A","amount":1,"can_mom":true},
		{"item_id":"B","amount":1,"can_mom":true}
	]`)
	b := newTestBot(f, nil)
	b.intn = func(int) int { return 0 }

	summary := b.RunBreedingCycle(context.Background())

	require.Equal(t, [][2]game.ID{{"A", "B"}}, summary.Pairs)
	assert.Equal(t, 0, summary.MothersLeft)
	calls := f.callsTo(game.OpPetMix)
	require.Len(t, calls, 1)
	assert.Equal(t, "A", calls[0].Body["mom_id"])
	assert.Equal(t, "B", calls[0].Body["dad_id"])
}

func TestBreedingStopsWhenNextMotherIsSamePet(t *testing.T) {
	f := breedingGame(`[{"item_id":"A","amount":2,"can_mom":true}]`)
	b := newTestBot(f, nil)
	b.intn = func(int) int { return 0 }

	summary := b.RunBreedingCycle(context.Background())

	assert.True(t, summary.NoPair)
	assert.Empty(t, f.callsTo(game.OpPetMix))
}

func TestBreedingAlwaysTerminates(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		rng := rand.New(rand.NewPCG(seed, seed*31+7))
		var stacks []string
		for i := 0; i < 1+rng.IntN(6); i++ {
			mom := rng.IntN(2) == 0
			id := rng.IntN(4)
			if !mom {
				id += 10
			}
			stacks = append(stacks, fmt.Sprintf(`{"item_id":%d,"amount":%d,"can_mom":%t}`, id, 1+rng.IntN(3), mom))
		}
		dna := "[" + joinJSON(stacks) + "]"

		f := breedingGame(dna)
		b := newTestBot(f, nil)
		b.intn = rng.IntN

		summary := b.RunBreedingCycle(context.Background())
		for _, pair := range summary.Pairs {
			assert.NotEqual(t, pair[0], pair[1], "seed %d paired a pet with itself: %s", seed, dna)
		}
	}
}

func joinJSON(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ","
		}
		out += s
	}
	return out
}
