package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
)

// ErrEmptyPayload is returned when a call succeeds but carries no result
var ErrEmptyPayload = errors.New("empty result payload")

// Requester executes a named operation and returns the unwrapped "result"
// field of the response. Implementations never interpret game semantics.
type Requester interface {
	Request(ctx context.Context, op Operation, body any) (json.RawMessage, error)
}

// Client is the typed facade the account engine talks to
type Client struct {
	r Requester
}

// NewClient wraps a Requester
func NewClient(r Requester) *Client {
	return &Client{r: r}
}

func (c *Client) call(ctx context.Context, op Operation, body any, out any) error {
	raw, err := c.r.Request(ctx, op, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if len(raw) == 0 || string(raw) == "null" {
		return fmt.Errorf("%s: %w", op.Name, ErrEmptyPayload)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode result: %w", op.Name, err)
	}
	return nil
}

// UserInfo fetches the account profile
func (c *Client) UserInfo(ctx context.Context) (*UserInfo, error) {
	var info UserInfo
	if err := c.call(ctx, OpUserInfo, nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// Register calls the auth register endpoint
func (c *Client) Register(ctx context.Context) error {
	return c.call(ctx, OpRegister, nil, nil)
}

// ServerInfo fetches the raw server info payload
func (c *Client) ServerInfo(ctx context.Context) (json.RawMessage, error) {
	return c.r.Request(ctx, OpServerInfo, nil)
}

// Pets fetches the pet inventory used for missions
func (c *Client) Pets(ctx context.Context) ([]Pet, error) {
	var pets []Pet
	if err := c.call(ctx, OpPetList, nil, &pets); err != nil && !errors.Is(err, ErrEmptyPayload) {
		return nil, err
	}
	return pets, nil
}

// DNAPets fetches the DNA inventory used for breeding
func (c *Client) DNAPets(ctx context.Context) ([]DNAPet, error) {
	var pets []DNAPet
	if err := c.call(ctx, OpPetDNAList, nil, &pets); err != nil && !errors.Is(err, ErrEmptyPayload) {
		return nil, err
	}
	return pets, nil
}

// Missions fetches the mission list
func (c *Client) Missions(ctx context.Context) ([]Mission, error) {
	var missions []Mission
	if err := c.call(ctx, OpMissionList, nil, &missions); err != nil && !errors.Is(err, ErrEmptyPayload) {
		return nil, err
	}
	return missions, nil
}

// Quests fetches the quest list
func (c *Client) Quests(ctx context.Context) ([]Quest, error) {
	var list QuestList
	if err := c.call(ctx, OpQuestList, nil, &list); err != nil {
		return nil, err
	}
	return list.Quests, nil
}

// Achievements fetches all achievement groups and flattens them. Groups are
// visited in key order, numeric keys first and ascending.
func (c *Client) Achievements(ctx context.Context) ([]Achievement, error) {
	var groups map[string]AchievementGroup
	if err := c.call(ctx, OpAchievementList, nil, &groups); err != nil && !errors.Is(err, ErrEmptyPayload) {
		return nil, err
	}
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sortGroupKeys(keys)

	var all []Achievement
	for _, k := range keys {
		all = append(all, groups[k].Achievements...)
	}
	return all, nil
}

// sortGroupKeys orders integer keys numerically ahead of other keys, which
// sort as strings
func sortGroupKeys(keys []string) {
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		}
		return keys[i] < keys[j]
	})
}

// SeasonPasses fetches the season pass list
func (c *Client) SeasonPasses(ctx context.Context) ([]SeasonPass, error) {
	var passes []SeasonPass
	if err := c.call(ctx, OpSeasonPassList, nil, &passes); err != nil {
		return nil, err
	}
	return passes, nil
}

// Gacha draws amount DNA pets
func (c *Client) Gacha(ctx context.Context, amount int) (*GachaResult, error) {
	var res GachaResult
	if err := c.call(ctx, OpPetDNAGacha, map[string]int{"amount": amount}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Mix breeds two pets. The result pet is optional in the response.
func (c *Client) Mix(ctx context.Context, momID, dadID ID) (*MixResult, error) {
	raw, err := c.r.Request(ctx, OpPetMix, map[string]ID{"dad_id": dadID, "mom_id": momID})
	if err != nil {
		return nil, err
	}
	var res MixResult
	if len(raw) > 0 && string(raw) != "null" {
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, fmt.Errorf("%s: decode result: %w", OpPetMix.Name, err)
		}
	}
	return &res, nil
}

// EnterMission submits pets for a mission
func (c *Client) EnterMission(ctx context.Context, a Assignment) error {
	return c.call(ctx, OpMissionEnter, a, nil)
}

// ClaimMission claims a completed mission
func (c *Client) ClaimMission(ctx context.Context, missionID ID) error {
	return c.call(ctx, OpMissionClaim, map[string]ID{"mission_id": missionID}, nil)
}

// CheckQuest completes a quest
func (c *Client) CheckQuest(ctx context.Context, questCode string) error {
	return c.call(ctx, OpQuestCheck, map[string]string{"quest_code": questCode}, nil)
}

// ClaimAchievement claims a finished achievement
func (c *Client) ClaimAchievement(ctx context.Context, questID ID) error {
	return c.call(ctx, OpAchievementClaim, map[string]ID{"quest_id": questID}, nil)
}

// ClaimSeasonPass claims one free season pass tier
func (c *Client) ClaimSeasonPass(ctx context.Context, seasonID ID, step int) error {
	body := map[string]any{"season_id": seasonID, "type": "free", "step": step}
	return c.call(ctx, OpSeasonPassClaim, body, nil)
}

// JoinClan joins a clan
func (c *Client) JoinClan(ctx context.Context, clanID int) error {
	return c.call(ctx, OpClanJoin, map[string]int{"clan_id": clanID}, nil)
}

// QuitClan leaves a clan
func (c *Client) QuitClan(ctx context.Context, clanID int) error {
	return c.call(ctx, OpClanQuit, map[string]int{"clan_id": clanID}, nil)
}
