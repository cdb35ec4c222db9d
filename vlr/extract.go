package vlr

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mattwold/vct-fantasy/model"
)

// Stat cell selectors, relative to one <tr> of the scoreboard. Every stat
// cell carries a .mod-both span holding the both-sides value.
//
//	IGN:      .text-of
//	Team:     .ge-text-light
//	Rating:   .mod-stat .mod-both            (first)
//	ACS:      .mod-stat .mod-both            (second)
//	Kills:    .mod-vlr-kills .mod-both
//	Deaths:   .mod-vlr-deaths .mod-both      (text is "/N/")
//	Assists:  .mod-vlr-assists .mod-both
//	KD diff:  .mod-kd-diff .mod-both
//	KAST:     .mod-kd-diff + .mod-stat .mod-both
//	ADR:      .mod-combat .mod-both
//	HS%:      .mod-hs .mod-both
//	FK:       .mod-fb .mod-both
//	FD:       .mod-fd .mod-both
//	FK diff:  .mod-fk-diff .mod-both

var playerHrefPattern = regexp.MustCompile(`/player/`)

func (c *client) ScrapeMatch(ctx context.Context, matchURL string, tournamentID int64, sourceRegion string) (*MatchResult, error) {
	doc, err := c.get(ctx, matchURL)
	if err != nil {
		return nil, err
	}

	matchID := matchURL
	if m := matchIDPattern.FindStringSubmatch(matchURL); m != nil {
		matchID = m[1]
	}

	teamA, teamB := headerTeams(doc)

	var players []model.MatchStats

	// The "all maps" section is authoritative: exactly two tbody elements,
	// the first is team A, the second team B.
	allMaps := doc.Find(".vm-stats-game[data-game-id='all']").First()
	if allMaps.Length() > 0 {
		allMaps.Find("tbody").Each(func(i int, tbody *goquery.Selection) {
			team := teamA
			if i == 1 {
				team = teamB
			}
			tbody.Find("tr").Each(func(_ int, row *goquery.Selection) {
				p, ok := parseStatRow(row, matchID, matchURL, tournamentID, sourceRegion)
				if !ok {
					return
				}
				p.MatchTeam = team
				players = append(players, p)
			})
		})
	}

	// Fallback: whatever scoreboard is active on the page. Team assignment
	// falls back to position (first half team A).
	if len(players) == 0 {
		rows := doc.Find(".mod-active tbody tr")
		rows.Each(func(_ int, row *goquery.Selection) {
			p, ok := parseStatRow(row, matchID, matchURL, tournamentID, sourceRegion)
			if ok {
				players = append(players, p)
			}
		})
		mid := len(players) / 2
		for i := range players {
			if i < mid {
				players[i].MatchTeam = teamA
			} else {
				players[i].MatchTeam = teamB
			}
		}
	}

	scoreA, scoreB, mapCount, status := extractScore(doc)

	match := model.Match{
		MatchID:      matchID,
		TournamentID: tournamentID,
		URL:          matchURL,
		TeamA:        teamA,
		TeamB:        teamB,
		ScoreA:       scoreA,
		ScoreB:       scoreB,
		MapCount:     mapCount,
		Format:       model.FormatForMapCount(mapCount),
		Status:       status,
	}

	result := &MatchResult{Match: match, Players: players}
	if len(players) == 0 {
		result.Stubs = playerStubsFromMatch(doc, match, tournamentID, sourceRegion)
	}
	return result, nil
}

func headerTeams(doc *goquery.Document) (string, string) {
	var names []string
	doc.Find(".match-header-link-name .wf-title-med").Each(func(_ int, el *goquery.Selection) {
		if name := strings.TrimSpace(el.Text()); name != "" {
			names = append(names, name)
		}
	})
	teamA, teamB := "", ""
	if len(names) > 0 {
		teamA = names[0]
	}
	if len(names) > 1 {
		teamB = names[1]
	}
	return teamA, teamB
}

// parseStatRow reads one scoreboard <tr>. Rows with no IGN, and rows where
// kills, deaths, ACS and rating are all zero (header/noise rows), are
// dropped.
func parseStatRow(row *goquery.Selection, matchID, matchURL string, tournamentID int64, sourceRegion string) (model.MatchStats, bool) {
	ign := strings.TrimSpace(row.Find(".text-of").First().Text())
	if ign == "" {
		return model.MatchStats{}, false
	}
	teamAbbr := strings.TrimSpace(row.Find(".ge-text-light").First().Text())

	profileURL := ""
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if playerHrefPattern.MatchString(href) {
			if strings.HasPrefix(href, "/") {
				profileURL = BaseURL + href
			} else {
				profileURL = href
			}
			return false
		}
		return true
	})

	// Agent names come from icon alt/title attributes.
	var agents []string
	row.Find("img").Each(func(_ int, img *goquery.Selection) {
		name, _ := img.Attr("alt")
		if name == "" {
			name, _ = img.Attr("title")
		}
		if name = strings.TrimSpace(name); name != "" {
			agents = append(agents, name)
		}
	})

	cell := func(css string) string {
		return strings.TrimSpace(row.Find(css).First().Text())
	}

	stats := row.Find(".mod-stat .mod-both")
	rating := safeFloat(strings.TrimSpace(stats.Eq(0).Text()))
	acs := safeFloat(strings.TrimSpace(stats.Eq(1).Text()))

	kills := safeInt(cell(".mod-vlr-kills .mod-both"))
	// Deaths render as "/N/" between the per-side values.
	rawDeaths := safeInt(strings.Trim(cell(".mod-vlr-deaths .mod-both"), "/"))
	deaths := rawDeaths
	if deaths < 1 {
		deaths = 1
	}

	kastText := cell(".mod-kd-diff + .mod-stat .mod-both")
	kast := safeFloat(kastText)
	// The site sometimes renders KAST as a 0-1 decimal instead of a percent.
	if kast > 0 && kast <= 1.5 {
		kast *= 100
	}
	kastMissing := kastText == "" || kastText == "-" || kastText == "—"

	adr := safeFloat(cell(".mod-combat .mod-both"))

	p := model.MatchStats{
		PlayerID:     model.PlayerIDFromProfile(profileURL, ign, tournamentID),
		TournamentID: tournamentID,
		MatchID:      matchID,
		MatchURL:     matchURL,
		IGN:          ign,
		Team:         teamAbbr,
		TeamAbbr:     teamAbbr,
		Region:       model.InferRegion(teamAbbr, sourceRegion),
		Role:         model.RoleFlex,
		Agent:        strings.Join(agents, ", "),
		Rating:       rating,
		ACS:          acs,
		Kills:        kills,
		Deaths:       deaths,
		Assists:      safeInt(cell(".mod-vlr-assists .mod-both")),
		KDDiff:       safeInt(cell(".mod-kd-diff .mod-both")),
		KAST:         kast,
		ADR:          adr,
		HeadshotPct:  safeFloat(cell(".mod-hs .mod-both")),
		FirstKills:   safeInt(cell(".mod-fb .mod-both")),
		FirstDeaths:  safeInt(cell(".mod-fd .mod-both")),
		FKDiff:       safeInt(cell(".mod-fk-diff .mod-both")),
		ProfileURL:   profileURL,
	}

	if p.Kills == 0 && rawDeaths == 0 && p.ACS == 0 && p.Rating == 0 {
		return model.MatchStats{}, false
	}

	// Missing KAST or ADR corrupts the point formula; flag for review.
	var missing []string
	if kastMissing || p.KAST == 0 {
		missing = append(missing, "kast")
	}
	if p.ADR == 0 {
		missing = append(missing, "adr")
	}
	if len(missing) > 0 {
		p.Incomplete = true
		p.MissingFields = missing
	}

	return p, true
}

// extractScore reads the maps-won score from the match header and counts
// the played map sections. Returns (scoreA, scoreB, mapCount, status).
func extractScore(doc *goquery.Document) (int, int, int, model.MatchStatus) {
	scoreA, scoreB := 0, 0

	vs := doc.Find(".match-header-vs").First()
	var vals []int
	vs.Find(".js-spoiler").Each(func(_ int, s *goquery.Selection) {
		if v, err := strconv.Atoi(strings.TrimSpace(s.Text())); err == nil {
			vals = append(vals, v)
		}
	})
	if len(vals) >= 2 {
		scoreA, scoreB = vals[0], vals[1]
	} else {
		// Fallback: any spans inside the score block.
		var scores []int
		doc.Find(".match-header-vs-score span").Each(func(_ int, s *goquery.Selection) {
			txt := strings.TrimSpace(s.Text())
			if v, err := strconv.Atoi(txt); err == nil {
				scores = append(scores, v)
			}
		})
		if len(scores) >= 1 {
			scoreA = scores[0]
		}
		if len(scores) >= 2 {
			scoreB = scores[1]
		}
	}

	// Each numeric data-game-id section is one map that was played.
	mapCount := 0
	doc.Find(".vm-stats-game[data-game-id]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("data-game-id")
		if _, err := strconv.Atoi(id); err == nil {
			mapCount++
		}
	})
	if mapCount == 0 && scoreA+scoreB > 0 {
		mapCount = scoreA + scoreB
	}

	hasScores := scoreA > 0 || scoreB > 0
	if !hasScores {
		note := strings.ToLower(strings.TrimSpace(doc.Find(".match-header-vs-note").First().Text()))
		if strings.Contains(note, "tbd") {
			return 0, 0, 0, model.MatchUpcoming
		}
		return scoreA, scoreB, mapCount, model.MatchUpcoming
	}
	return scoreA, scoreB, mapCount, model.MatchCompleted
}
