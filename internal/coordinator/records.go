package coordinator

import (
	"errors"
	"fmt"

	"jordanella.com/animix-go/internal/accounts"
	"jordanella.com/animix-go/internal/bot"
	"jordanella.com/animix-go/internal/database"
	"jordanella.com/animix-go/internal/logging"
	"jordanella.com/animix-go/internal/session"
)

// Database writes are best effort. A failed write is logged and the fleet
// keeps running.

func (c *FleetCoordinator) recordStart(passID string, account accounts.Account) int64 {
	if c.db == nil {
		return 0
	}
	var name string
	if user, err := session.ParseInitData(account.InitData); err == nil {
		name = user.Name()
	}
	runID, err := c.db.StartAccountRun(passID, account.Index, name, account.Proxy)
	if err != nil {
		c.logger.Warn(fmt.Sprintf("Failed to record run start for account %d: %v", account.Number(), err))
		return 0
	}
	return runID
}

func (c *FleetCoordinator) recordFinish(passID string, runID int64, r AccountResult) {
	if c.db == nil || runID == 0 {
		return
	}

	var egressIP string
	var metrics database.RunMetrics
	if r.Report != nil {
		egressIP = r.Report.EgressIP
		metrics = Metrics(r.Report.State)
	}

	var err error
	if r.Err == nil {
		err = c.db.CompleteAccountRun(runID, egressIP, metrics)
	} else {
		status := database.StatusFailed
		if errors.Is(r.Err, ErrAccountTimeout) {
			status = database.StatusTimeout
		}
		err = c.db.FailAccountRun(runID, status, egressIP, metrics, r.Err.Error())
		if err == nil {
			category := categorize(r.Err)
			index := r.Account.Index
			_, err = c.db.LogError(passID, &runID, &index, string(category), string(logging.SeverityFor(category)), r.Err.Error())
		}
	}
	if err != nil {
		c.logger.Warn(fmt.Sprintf("Failed to record run result for account %d: %v", r.Account.Number(), err))
	}
}

// Metrics flattens a run's state into the stored counters
func Metrics(state *bot.State) database.RunMetrics {
	if state == nil {
		return database.RunMetrics{}
	}
	return database.RunMetrics{
		GachaDraws:          state.Gacha.Drawn,
		PetsBred:            len(state.Breeding.Pairs),
		MissionsClaimed:     len(state.Missions.Claimed),
		MissionsEntered:     len(state.Missions.Entered),
		QuestsClaimed:       len(state.Rewards.Quests),
		AchievementsClaimed: len(state.Rewards.Achievements),
		SeasonTiersClaimed:  state.Rewards.SeasonTiers,
	}
}
