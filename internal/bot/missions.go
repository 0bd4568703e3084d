package bot

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"jordanella.com/animix-go/internal/game"
)

// MissionSummary reports the claim and enter steps
type MissionSummary struct {
	Claimed []game.ID
	Entered []game.Assignment
}

// RunMissions claims completed missions, then fills free missions with
// available pets
func (b *Bot) RunMissions(ctx context.Context) MissionSummary {
	var summary MissionSummary

	b.log.Info("Checking for missions...")
	missions, err := b.client.Missions(ctx)
	if err != nil {
		b.log.Warn("Can't handle missions")
		return summary
	}
	summary.Claimed = b.claimMissions(ctx, missions)

	b.log.Info("Checking for available missions to enter...")
	summary.Entered = b.RunMissionCycle(ctx)
	return summary
}

func (b *Bot) claimMissions(ctx context.Context, missions []game.Mission) []game.ID {
	var claimed []game.ID
	for _, m := range missions {
		if !m.CanCompleted || b.config.IsSkipped(string(m.MissionID)) {
			continue
		}
		b.log.Info(fmt.Sprintf("Claiming mission %s | %s...", m.MissionID, m.Name))
		if err := b.client.ClaimMission(ctx, m.MissionID); err != nil {
			b.log.Warn(fmt.Sprintf("Claiming mission %s | %s failed", m.MissionID, m.Name))
		} else {
			b.log.Success(fmt.Sprintf("Claimed mission %s | %s", m.MissionID, m.Name))
			claimed = append(claimed, m.MissionID)
		}
		if err := b.pause(ctx, b.config.Pacing.Short); err != nil {
			break
		}
	}
	return claimed
}

// snapshot fetches pets and missions concurrently; both must succeed
func (b *Bot) snapshot(ctx context.Context) ([]game.Pet, []game.Mission, error) {
	var (
		pets     []game.Pet
		missions []game.Mission
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pets, err = b.client.Pets(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		missions, err = b.client.Missions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return pets, missions, nil
}

// RunMissionCycle enters missions one at a time, refreshing the inventory
// after each, until no mission can be filled. It also stops when an enter
// request fails or the backend offers a mission already entered this cycle.
func (b *Bot) RunMissionCycle(ctx context.Context) []game.Assignment {
	var entered []game.Assignment
	seen := make(map[game.ID]bool)

	for ctx.Err() == nil {
		pets, missions, err := b.snapshot(ctx)
		if err != nil {
			return entered
		}

		pool := BuildPool(pets, missions)
		b.log.Info(fmt.Sprintf("Available pets: %d", len(pool.Available)))
		if err := b.pause(ctx, b.config.Pacing.Short); err != nil {
			return entered
		}

		assignment := FindFillableMission(missions, pool)
		if assignment == nil {
			b.log.Warn("Cannot join another mission with current available pets")
			return entered
		}
		if seen[assignment.MissionID] {
			b.log.Warn(fmt.Sprintf("Mission %s still shows as free after entering, stopping", assignment.MissionID))
			return entered
		}
		seen[assignment.MissionID] = true

		b.log.Info(fmt.Sprintf("Entering mission %s with pets %v...", assignment.MissionID, assignment.PetIDs()))
		if err := b.client.EnterMission(ctx, *assignment); err != nil {
			return entered
		}
		b.log.Success(fmt.Sprintf("Entered mission %s", assignment.MissionID))
		entered = append(entered, *assignment)

		if err := b.pause(ctx, b.config.Pacing.Short); err != nil {
			return entered
		}
	}
	return entered
}
