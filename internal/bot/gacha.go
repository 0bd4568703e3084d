package bot

import (
	"context"
	"fmt"
)

// GachaSummary reports one drawing session
type GachaSummary struct {
	Batches []int // batch sizes submitted, in order
	Drawn   int   // units counted toward the ceiling
	Power   int   // power left after the last successful draw
	Failed  bool  // a draw request failed
}

// nextBatch picks 10 when power and the remaining ceiling both allow it,
// otherwise 1
func nextBatch(power, drawn, ceiling int) int {
	if power > 10 && drawn+10 <= ceiling {
		return 10
	}
	return 1
}

// DrawUntilExhausted spends god power on DNA draws until power drops to 1
// or the configured ceiling is reached. A failed draw ends the session.
func (b *Bot) DrawUntilExhausted(ctx context.Context, power int) GachaSummary {
	ceiling := b.config.MaxAmountGacha
	summary := GachaSummary{Power: power}

	b.log.Info("Getting new pets...")
	for summary.Power > 1 && summary.Drawn < ceiling {
		if err := b.pause(ctx, b.config.Pacing.Gacha); err != nil {
			return summary
		}

		batch := nextBatch(summary.Power, summary.Drawn, ceiling)
		summary.Batches = append(summary.Batches, batch)
		summary.Drawn += batch

		res, err := b.client.Gacha(ctx, batch)
		if err != nil {
			b.log.Warn("Can't get new pets!")
			summary.Failed = true
			return summary
		}

		b.log.Success(fmt.Sprintf("Got %d new pets", batch))
		for _, pet := range res.DNA {
			b.log.Custom(fmt.Sprintf("Pet: %s | Class: %s | Star: %d", pet.Name, pet.Class, pet.Star))
		}
		summary.Power = int(res.GodPower)
	}
	return summary
}
