package bot

import (
	"context"
	"fmt"
	"strings"

	"jordanella.com/animix-go/internal/game"
)

// RewardSummary reports what the sweep claimed
type RewardSummary struct {
	Quests       []string
	ClanJoined   bool
	Achievements []game.ID
	SeasonTiers  int
}

// SweepRewards runs the quest, achievement and season pass steps. A failure
// in one step never stops the others.
func (b *Bot) SweepRewards(ctx context.Context, clanID int) RewardSummary {
	var summary RewardSummary

	b.log.Info("Checking for available quests...")
	b.claimQuests(ctx, clanID, &summary)

	if ctx.Err() != nil {
		return summary
	}
	b.log.Info("Checking for completed achievements...")
	summary.Achievements = b.claimAchievements(ctx)

	if ctx.Err() != nil {
		return summary
	}
	b.log.Info("Checking for available season pass...")
	summary.SeasonTiers = b.claimSeasonPasses(ctx)

	return summary
}

// pendingQuests returns quest codes that are unfinished and not skipped
func (b *Bot) pendingQuests(quests []game.Quest) []string {
	var codes []string
	for _, q := range quests {
		if q.Status || b.config.IsSkipped(q.QuestCode) {
			continue
		}
		codes = append(codes, q.QuestCode)
	}
	return codes
}

func (b *Bot) claimQuests(ctx context.Context, clanID int, summary *RewardSummary) {
	quests, err := b.client.Quests(ctx)
	if err != nil {
		return
	}

	codes := b.pendingQuests(quests)
	if len(codes) <= 1 {
		b.log.Warn("No quests to do.")
		return
	}

	b.log.Info(fmt.Sprintf("Found quests: %s", strings.Join(codes, ",")))
	summary.ClanJoined = b.ensureClan(ctx, clanID)

	for _, code := range codes {
		b.log.Info(fmt.Sprintf("Doing daily quest: %s", code))
		if err := b.client.CheckQuest(ctx, code); err == nil {
			b.log.Success(fmt.Sprintf("Daily quest %s done", code))
			summary.Quests = append(summary.Quests, code)
		}
		if err := b.pause(ctx, b.config.Pacing.Quest); err != nil {
			return
		}
	}
}

// ensureClan moves the account into the target clan. Returns true when a
// join was attempted.
func (b *Bot) ensureClan(ctx context.Context, clanID int) bool {
	target := b.config.TargetClanID
	switch {
	case clanID == target:
		return false
	case clanID == 0:
		_ = b.client.JoinClan(ctx, target)
	default:
		_ = b.client.QuitClan(ctx, target)
		_ = b.client.JoinClan(ctx, target)
	}
	return true
}

func (b *Bot) claimAchievements(ctx context.Context) []game.ID {
	all, err := b.client.Achievements(ctx)
	if err != nil {
		return nil
	}

	var pending []game.ID
	for _, a := range all {
		if a.Status && !a.Claimed {
			pending = append(pending, a.QuestID)
		}
	}
	if len(pending) == 0 {
		b.log.Warn("No completed achievements found.")
		return nil
	}

	b.log.Info(fmt.Sprintf("Found completed achievements: %d", len(pending)))
	var claimed []game.ID
	for _, id := range pending {
		b.log.Info(fmt.Sprintf("Claiming achievement ID: %s", id))
		if err := b.client.ClaimAchievement(ctx, id); err == nil {
			b.log.Success(fmt.Sprintf("Claimed achievement %s", id))
			claimed = append(claimed, id)
		}
		if err := b.pause(ctx, b.config.Pacing.Achievement); err != nil {
			break
		}
	}
	return claimed
}

func (b *Bot) claimSeasonPasses(ctx context.Context) int {
	passes, err := b.client.SeasonPasses(ctx)
	if err != nil {
		b.log.Warn("Can not get season pass!")
		return 0
	}
	if len(passes) == 0 {
		b.log.Warn("Season pass not found.")
		return 0
	}

	claimed := 0
	for _, pass := range passes {
		b.log.Info(fmt.Sprintf("Checking season pass %s | current step %d | %s", pass.SeasonID, pass.CurrentStep, pass.Title))
		for _, tier := range pass.ClaimableTiers() {
			if ctx.Err() != nil {
				return claimed
			}
			b.log.Info(fmt.Sprintf("Claiming season pass %s step %d: %v %s", pass.SeasonID, tier.Step, tier.Amount, tier.Name))
			if err := b.client.ClaimSeasonPass(ctx, pass.SeasonID, tier.Step); err == nil {
				b.log.Success("Season pass claimed successfully!")
				claimed++
			}
		}
	}
	return claimed
}
