// Package teams maps free-text predictions onto game sides. A canonical
// team-id lookup is preferred at ingestion time; the fuzzy text matcher here
// exists for legacy free-text predictions and always returns a tri-state
// result instead of guessing.
package teams

import (
	"strings"
)

// Team describes one NFL franchise. The slug is the canonical identity used
// for duplicate detection, so every alias of a team must collapse to it.
type Team struct {
	City     string
	Nickname string
}

// Slug returns the canonical identifier, e.g. "cleveland-browns".
func (t Team) Slug() string {
	return strings.ReplaceAll(strings.ToLower(t.City+" "+t.Nickname), " ", "-")
}

// nflTeams is the single authoritative franchise table. Duplicate detection
// and side resolution both derive their aliases from it.
var nflTeams = []Team{
	{"Arizona", "Cardinals"},
	{"Atlanta", "Falcons"},
	{"Baltimore", "Ravens"},
	{"Buffalo", "Bills"},
	{"Carolina", "Panthers"},
	{"Chicago", "Bears"},
	{"Cincinnati", "Bengals"},
	{"Cleveland", "Browns"},
	{"Dallas", "Cowboys"},
	{"Denver", "Broncos"},
	{"Detroit", "Lions"},
	{"Green Bay", "Packers"},
	{"Houston", "Texans"},
	{"Indianapolis", "Colts"},
	{"Jacksonville", "Jaguars"},
	{"Kansas City", "Chiefs"},
	{"Las Vegas", "Raiders"},
	{"Los Angeles", "Chargers"},
	{"Los Angeles", "Rams"},
	{"Miami", "Dolphins"},
	{"Minnesota", "Vikings"},
	{"New England", "Patriots"},
	{"New Orleans", "Saints"},
	{"New York", "Giants"},
	{"New York", "Jets"},
	{"Philadelphia", "Eagles"},
	{"Pittsburgh", "Steelers"},
	{"San Francisco", "49ers"},
	{"Seattle", "Seahawks"},
	{"Tampa Bay", "Buccaneers"},
	{"Tennessee", "Titans"},
	{"Washington", "Commanders"},
}

// aliasSlugs maps every unambiguous alias (full name, nickname, city) to the
// canonical slug. Cities shared by two franchises (New York, Los Angeles) are
// excluded because the city alone cannot identify a team.
var aliasSlugs = buildAliases()

func buildAliases() map[string]string {
	aliases := make(map[string]string)
	cityCount := make(map[string]int)
	for _, t := range nflTeams {
		cityCount[strings.ToLower(t.City)]++
	}
	for _, t := range nflTeams {
		slug := t.Slug()
		aliases[strings.ToLower(t.City+" "+t.Nickname)] = slug
		aliases[strings.ToLower(t.Nickname)] = slug
		city := strings.ToLower(t.City)
		if cityCount[city] == 1 {
			aliases[city] = slug
		}
	}
	return aliases
}

// Normalize lowercases and trims a team name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CanonicalSlug resolves a team name or alias to its canonical slug, so that
// "Browns" and "Cleveland Browns" collide on the same identity. Names with no
// known alias fall back to a slugified form of the normalized input.
func CanonicalSlug(name string) string {
	normalized := Normalize(name)
	if slug, ok := aliasSlugs[normalized]; ok {
		return slug
	}
	// Unrecognized names may still carry a known nickname as the last token.
	fields := strings.Fields(normalized)
	if len(fields) > 1 {
		if slug, ok := aliasSlugs[fields[len(fields)-1]]; ok {
			return slug
		}
	}
	return strings.ReplaceAll(normalized, " ", "-")
}
