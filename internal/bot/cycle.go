package bot

import (
	"context"
	"fmt"
)

// runCycle is the strict stage sequence for one account. Each stage finishes
// before the next starts; they share remote account state.
func (b *Bot) runCycle(ctx context.Context) error {
	info, err := b.client.UserInfo(ctx)
	if err != nil {
		b.log.Error("Login failed. Skipping account.", err)
		return fmt.Errorf("%w: %v", ErrNoProfile, err)
	}

	b.state.FullName = info.FullName
	b.state.Balance = info.Token
	b.state.GodPower = int(info.GodPower)
	b.state.ClanID = int(info.ClanID)
	b.log.Info(fmt.Sprintf("User: %s | Balance: %v | Gacha: %d", info.FullName, info.Token, info.GodPower))

	pacing := b.config.Pacing

	if err := b.pause(ctx, pacing.Stage); err != nil {
		return err
	}
	b.state.Gacha = b.DrawUntilExhausted(ctx, int(info.GodPower))

	if b.config.AutoMergePet {
		if err := b.pause(ctx, pacing.Stage); err != nil {
			return err
		}
		b.state.Breeding = b.RunBreedingCycle(ctx)
	}

	if err := b.pause(ctx, pacing.Stage); err != nil {
		return err
	}
	b.state.Missions = b.RunMissions(ctx)

	if err := b.pause(ctx, pacing.Stage); err != nil {
		return err
	}
	b.state.Rewards = b.SweepRewards(ctx, int(info.ClanID))

	return ctx.Err()
}
