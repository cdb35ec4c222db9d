package vlr

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/mattwold/vct-fantasy/model"
)

// Stubs are zero-stat leaderboard rows built from player profile links, so
// a tournament's players exist (and can be drafted) before any match has
// stats. A stub never overwrites a player who already has real points.

func (c *client) EventStatsStubs(ctx context.Context, eventURL string, tournamentID int64) ([]model.Player, error) {
	eventID, slug, err := eventIDAndSlug(eventURL)
	if err != nil {
		return nil, err
	}

	var candidates []string
	if slug != "" {
		candidates = append(candidates, c.baseURL+"/event/stats/"+eventID+"/"+slug)
	}
	candidates = append(candidates, c.baseURL+"/event/stats/"+eventID)

	for _, url := range candidates {
		doc, err := c.get(ctx, url)
		if err != nil {
			continue
		}

		var stubs []model.Player
		seen := make(map[string]bool)
		doc.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			ign := strings.TrimSpace(row.Find(".text-of").First().Text())
			if len(ign) < 2 {
				return
			}
			teamAbbr := strings.TrimSpace(row.Find(".ge-text-light").First().Text())
			profileURL := firstPlayerLink(row)
			pid := model.PlayerIDFromProfile(profileURL, ign, tournamentID)
			if seen[pid] {
				return
			}
			seen[pid] = true
			stubs = append(stubs, newStub(pid, tournamentID, ign, teamAbbr, teamAbbr, profileURL, model.InferRegion(teamAbbr, "")))
		})
		if len(stubs) > 0 {
			return stubs, nil
		}
	}
	return nil, nil
}

// playerStubsFromMatch pulls stubs out of a match page with no stat rows
// (upcoming matches still link lineups). Team assignment comes from tbody
// position when a stats skeleton exists, else by page position.
func playerStubsFromMatch(doc *goquery.Document, match model.Match, tournamentID int64, sourceRegion string) []model.Player {
	var stubs []model.Player
	seen := make(map[string]bool)

	allMaps := doc.Find(".vm-stats-game[data-game-id='all']").First()
	allMaps.Find("tbody").Each(func(i int, tbody *goquery.Selection) {
		team := match.TeamA
		if i == 1 {
			team = match.TeamB
		}
		tbody.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href, _ := a.Attr("href")
			if !playerHrefPattern.MatchString(href) {
				return
			}
			ign := strings.TrimSpace(a.Find(".text-of").First().Text())
			if ign == "" {
				ign = strings.TrimSpace(a.Text())
			}
			if len(ign) < 2 {
				return
			}
			profileURL := absoluteURL(href)
			pid := model.PlayerIDFromProfile(profileURL, ign, tournamentID)
			if seen[pid] {
				return
			}
			seen[pid] = true
			abbr := team
			if row := a.Closest("tr"); row.Length() > 0 {
				if t := strings.TrimSpace(row.Find(".ge-text-light").First().Text()); t != "" {
					abbr = t
				}
			}
			stubs = append(stubs, newStub(pid, tournamentID, ign, team, abbr, profileURL, model.InferRegion(abbr, sourceRegion)))
		})
	})

	if len(stubs) > 0 {
		return stubs
	}

	// No stats skeleton at all. Take every profile link on the page and
	// split them down the middle between the two teams.
	var links []*goquery.Selection
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if playerHrefPattern.MatchString(href) {
			links = append(links, a)
		}
	})
	mid := len(links) / 2
	if mid < 1 {
		mid = 1
	}
	for idx, a := range links {
		href, _ := a.Attr("href")
		ign := strings.TrimSpace(a.Text())
		if len(ign) < 2 {
			continue
		}
		profileURL := absoluteURL(href)
		pid := model.PlayerIDFromProfile(profileURL, ign, tournamentID)
		if seen[pid] {
			continue
		}
		seen[pid] = true
		team := match.TeamA
		if idx >= mid {
			team = match.TeamB
		}
		stubs = append(stubs, newStub(pid, tournamentID, ign, team, team, profileURL, model.InferRegion(team, sourceRegion)))
	}
	return stubs
}

func newStub(pid string, tournamentID int64, ign, team, abbr, profileURL, region string) model.Player {
	return model.Player{
		PlayerID:     pid,
		TournamentID: tournamentID,
		IGN:          ign,
		Team:         team,
		TeamAbbr:     abbr,
		Region:       region,
		Role:         model.RoleFlex,
		ProfileURL:   profileURL,
	}
}

// firstPlayerLink returns the first /player/ profile URL inside a selection.
func firstPlayerLink(s *goquery.Selection) string {
	url := ""
	s.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		if playerHrefPattern.MatchString(href) {
			url = absoluteURL(href)
			return false
		}
		return true
	})
	return url
}

func absoluteURL(href string) string {
	if strings.HasPrefix(href, "/") {
		return BaseURL + href
	}
	return href
}
