package game

// UserInfo is the profile returned by user-info
type UserInfo struct {
	FullName string  `json:"full_name"`
	Token    float64 `json:"token"`
	GodPower FlexInt `json:"god_power"`
	ClanID   FlexInt `json:"clain_id"`
}

// Pet is one inventory stack from pet-list
type Pet struct {
	PetID  ID      `json:"pet_id"`
	Name   string  `json:"name"`
	Star   FlexInt `json:"star"`
	Class  string  `json:"class"`
	Amount FlexInt `json:"amount"`
}

// DNAPet is one stack from pet-dna-list
type DNAPet struct {
	ItemID ID      `json:"item_id"`
	Name   string  `json:"name"`
	Star   FlexInt `json:"star"`
	Class  string  `json:"class"`
	Amount FlexInt `json:"amount"`
	CanMom bool    `json:"can_mom"`
}

// JoinedPet is a pet already committed to a running mission
type JoinedPet struct {
	PetID ID `json:"pet_id"`
}

// Slot is one class + minimum star requirement of a mission. Position is
// 1-based and maps onto pet_N_id in the enter payload.
type Slot struct {
	Position int
	Class    string
	MinStar  int
}

// Mission is one entry of mission-list
type Mission struct {
	MissionID    ID          `json:"mission_id"`
	Name         string      `json:"name"`
	CanCompleted bool        `json:"can_completed"`
	Pet1Class    string      `json:"pet_1_class"`
	Pet1Star     FlexInt     `json:"pet_1_star"`
	Pet2Class    string      `json:"pet_2_class"`
	Pet2Star     FlexInt     `json:"pet_2_star"`
	Pet3Class    string      `json:"pet_3_class"`
	Pet3Star     FlexInt     `json:"pet_3_star"`
	PetJoined    []JoinedPet `json:"pet_joined"`
}

// Slots returns the mission's required slots in order, skipping unused ones
func (m Mission) Slots() []Slot {
	slots := make([]Slot, 0, 3)
	for _, s := range []Slot{
		{1, m.Pet1Class, int(m.Pet1Star)},
		{2, m.Pet2Class, int(m.Pet2Star)},
		{3, m.Pet3Class, int(m.Pet3Star)},
	} {
		if s.Class != "" {
			slots = append(slots, s)
		}
	}
	return slots
}

// Occupied reports whether pets are already running this mission
func (m Mission) Occupied() bool {
	return len(m.PetJoined) > 0
}

// Assignment is the mission-enter payload
type Assignment struct {
	MissionID ID `json:"mission_id"`
	Pet1ID    ID `json:"pet_1_id,omitempty"`
	Pet2ID    ID `json:"pet_2_id,omitempty"`
	Pet3ID    ID `json:"pet_3_id,omitempty"`
}

// Set fills the pet id for a 1-based slot position
func (a *Assignment) Set(position int, id ID) {
	switch position {
	case 1:
		a.Pet1ID = id
	case 2:
		a.Pet2ID = id
	case 3:
		a.Pet3ID = id
	}
}

// PetIDs returns the assigned unit ids in slot order
func (a Assignment) PetIDs() []ID {
	ids := make([]ID, 0, 3)
	for _, id := range []ID{a.Pet1ID, a.Pet2ID, a.Pet3ID} {
		if id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// Quest is one entry of quest-list
type Quest struct {
	QuestCode string `json:"quest_code"`
	Status    bool   `json:"status"`
}

// QuestList is the quest-list payload
type QuestList struct {
	Quests []Quest `json:"quests"`
}

// Achievement is one achievement entry
type Achievement struct {
	QuestID ID   `json:"quest_id"`
	Status  bool `json:"status"`
	Claimed bool `json:"claimed"`
}

// AchievementGroup is one group of achievement-list
type AchievementGroup struct {
	Achievements []Achievement `json:"achievements"`
}

// SeasonReward is one reward tier of a season pass
type SeasonReward struct {
	Step      int     `json:"step"`
	IsClaimed bool    `json:"is_claimed"`
	Amount    float64 `json:"amount"`
	Name      string  `json:"name"`
}

// SeasonPass is one entry of season-pass-list
type SeasonPass struct {
	SeasonID    ID             `json:"season_id"`
	CurrentStep int            `json:"current_step"`
	Title       string         `json:"title"`
	FreeRewards []SeasonReward `json:"free_rewards"`
}

// ClaimableTiers returns free tiers reached and not yet claimed
func (sp SeasonPass) ClaimableTiers() []SeasonReward {
	var tiers []SeasonReward
	for _, r := range sp.FreeRewards {
		if r.Step > sp.CurrentStep || r.IsClaimed {
			continue
		}
		tiers = append(tiers, r)
	}
	return tiers
}

// DrawnPet is one pet returned by a gacha draw
type DrawnPet struct {
	Name  string `json:"name"`
	Class string `json:"class"`
	Star  int    `json:"star"`
}

// GachaResult is the pet-dna-gacha payload
type GachaResult struct {
	DNA      []DrawnPet `json:"dna"`
	GodPower FlexInt    `json:"god_power"`
}

// MixResult is the pet-mix payload
type MixResult struct {
	Pet *DrawnPet `json:"pet"`
}
