package game

import "net/http"

// Operation is one named call against the game backend
type Operation struct {
	Name   string
	Method string
	Path   string
}

var (
	OpRegister         = Operation{"register", http.MethodGet, "/auth/register"}
	OpServerInfo       = Operation{"server-info", http.MethodGet, "/public/server/info"}
	OpUserInfo         = Operation{"user-info", http.MethodGet, "/public/user/info"}
	OpQuestCheck       = Operation{"quest-check", http.MethodPost, "/public/quest/check"}
	OpMissionList      = Operation{"mission-list", http.MethodGet, "/public/mission/list"}
	OpPetList          = Operation{"pet-list", http.MethodGet, "/public/pet/list"}
	OpPetDNAList       = Operation{"pet-dna-list", http.MethodGet, "/public/pet/dna/list"}
	OpAchievementList  = Operation{"achievement-list", http.MethodGet, "/public/achievement/list"}
	OpQuestList        = Operation{"quest-list", http.MethodGet, "/public/quest/list"}
	OpSeasonPassList   = Operation{"season-pass-list", http.MethodGet, "/public/season-pass/list"}
	OpPetDNAGacha      = Operation{"pet-dna-gacha", http.MethodPost, "/public/pet/dna/gacha"}
	OpSeasonPassClaim  = Operation{"season-pass-claim", http.MethodPost, "/public/season-pass/claim"}
	OpMissionClaim     = Operation{"mission-claim", http.MethodPost, "/public/mission/claim"}
	OpPetMix           = Operation{"pet-mix", http.MethodPost, "/public/pet/mix"}
	OpMissionEnter     = Operation{"mission-enter", http.MethodPost, "/public/mission/enter"}
	OpClanJoin         = Operation{"clan-join", http.MethodPost, "/public/clan/join"}
	OpClanQuit         = Operation{"clan-quit", http.MethodPost, "/public/clan/quit"}
	OpAchievementClaim = Operation{"achievement-claim", http.MethodPost, "/public/achievement/claim"}
)

// Operations lists the full catalogue
var Operations = []Operation{
	OpRegister, OpServerInfo, OpUserInfo, OpQuestCheck, OpMissionList, OpPetList,
	OpPetDNAList, OpAchievementList, OpQuestList, OpSeasonPassList, OpPetDNAGacha,
	OpSeasonPassClaim, OpMissionClaim, OpPetMix, OpMissionEnter, OpClanJoin,
	OpClanQuit, OpAchievementClaim,
}
