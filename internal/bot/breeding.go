package bot

import (
	"context"
	"fmt"

	"jordanella.com/animix-go/internal/game"
)

// BreedingSummary reports one breeding session
type BreedingSummary struct {
	Pairs       [][2]game.ID // mom, dad in submission order
	MothersLeft int
	FathersLeft int
	NoMothers   bool
	NoPair      bool // stopped with mothers left and no eligible partner
}

// splitBreedingPool expands DNA stacks into mother and father units
func splitBreedingPool(pets []game.DNAPet) (moms, dads []game.ID) {
	for _, pet := range pets {
		for i := 0; i < int(pet.Amount); i++ {
			if pet.CanMom {
				moms = append(moms, pet.ItemID)
			} else {
				dads = append(dads, pet.ItemID)
			}
		}
	}
	return moms, dads
}

func removeAt(ids []game.ID, i int) []game.ID {
	return append(ids[:i], ids[i+1:]...)
}

// RunBreedingCycle pairs random mothers with random fathers until the mother
// pool drains. Once fathers run out, a mother is paired with the next mother
// in the pool when that one is a different pet.
func (b *Bot) RunBreedingCycle(ctx context.Context) BreedingSummary {
	var summary BreedingSummary

	pets, err := b.client.DNAPets(ctx)
	if err != nil {
		return summary
	}

	moms, dads := splitBreedingPool(pets)
	b.log.Info(fmt.Sprintf("Available pets Male: %d | Female: %d", len(dads), len(moms)))

	if len(moms) == 0 {
		b.log.Warn("You don't have any female pets to breed")
		summary.NoMothers = true
		return summary
	}

	for len(moms) > 0 {
		if ctx.Err() != nil {
			break
		}

		momIdx := b.intn(len(moms))
		mom := moms[momIdx]

		if len(dads) > 0 {
			dadIdx := b.intn(len(dads))
			dad := dads[dadIdx]
			b.breed(ctx, mom, dad, &summary)
			moms = removeAt(moms, momIdx)
			dads = removeAt(dads, dadIdx)
		} else if len(moms) > 1 && momIdx+1 < len(moms) && moms[momIdx+1] != mom {
			next := moms[momIdx+1]
			b.breed(ctx, mom, next, &summary)
			moms = removeAt(moms, momIdx)
			moms = removeAt(moms, momIdx)
		} else {
			b.log.Warn("You don't have any couple to breed")
			summary.NoPair = true
			break
		}

		if err := b.pause(ctx, b.config.Pacing.Short); err != nil {
			break
		}
	}

	summary.MothersLeft = len(moms)
	summary.FathersLeft = len(dads)
	return summary
}

func (b *Bot) breed(ctx context.Context, mom, dad game.ID, summary *BreedingSummary) {
	b.log.Info(fmt.Sprintf("Breeding pets %s and %s", mom, dad))
	summary.Pairs = append(summary.Pairs, [2]game.ID{mom, dad})

	res, err := b.client.Mix(ctx, mom, dad)
	if err != nil {
		return
	}
	if res.Pet != nil {
		b.log.Success(fmt.Sprintf("Breeding successful! Name: %s | Star: %d | Class: %s",
			res.Pet.Name, res.Pet.Star, res.Pet.Class))
		return
	}
	b.log.Success("Breeding successful!")
}
