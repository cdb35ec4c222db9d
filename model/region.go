package model

import (
	"sort"
	"strings"
)

// teamRegions maps lowercase team names and common abbreviations to their
// competitive region. Matching is by substring against the lowercased team
// name, so "FNATIC (EMEA)" still resolves.
var teamRegions = map[string]string{
	// EMEA
	"fnatic": "EMEA", "natus vincere": "EMEA", "navi": "EMEA",
	"team liquid": "EMEA", "liquid": "EMEA", "bbl": "EMEA",
	"karmine corp": "EMEA", "kc": "EMEA", "gentle mates": "EMEA",
	"gm": "EMEA", "team heretics": "EMEA", "heretics": "EMEA",
	"fut esports": "EMEA", "fut": "EMEA", "apeks": "EMEA",
	"nip": "EMEA", "ninjas in pyjamas": "EMEA",
	"vitality": "EMEA", "m8": "EMEA", "loud emea": "EMEA",
	// AMER
	"sentinels": "AMER", "sen": "AMER", "cloud9": "AMER", "c9": "AMER",
	"100 thieves": "AMER", "100t": "AMER", "nrg": "AMER",
	"evil geniuses": "AMER", "eg": "AMER", "furia": "AMER",
	"mibr": "AMER", "leviatán": "AMER", "leviatan": "AMER",
	"loud": "AMER", "kru esports": "AMER", "kru": "AMER",
	"2game esports": "AMER",
	// APAC
	"paper rex": "APAC", "prx": "APAC", "rex regum qeon": "APAC",
	"rrq": "APAC", "drx": "APAC", "global esports": "APAC",
	"ge": "APAC", "team secret": "APAC", "nongshim redforce": "APAC",
	"ns": "APAC", "t1": "APAC", "gen.g": "APAC", "geng": "APAC",
	"talon esports": "APAC", "talon": "APAC", "zeta division": "APAC",
	"bleed esports": "APAC",
	// CN
	"edg": "CN", "edward gaming": "CN", "blg": "CN", "bilibili gaming": "CN",
	"te": "CN", "thunderbird esports": "CN", "wolves": "CN",
	"nova esports": "CN", "fpx": "CN", "funplus phoenix": "CN",
	"tes": "CN", "top esports": "CN",
}

// regionKeys holds the map keys sorted longest first so the most specific
// name wins ("gentle mates" before "ge").
var regionKeys = func() []string {
	keys := make([]string, 0, len(teamRegions))
	for k := range teamRegions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// InferRegion resolves a team's region. An explicit source region always
// wins; otherwise the team name is matched against the known-team table.
// Unknown teams return "".
func InferRegion(teamName, sourceRegion string) string {
	if sourceRegion != "" {
		return sourceRegion
	}
	low := strings.ToLower(teamName)
	for _, k := range regionKeys {
		if strings.Contains(low, k) {
			return teamRegions[k]
		}
	}
	return ""
}
