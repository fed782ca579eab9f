package teams

import (
	"regexp"
	"strings"
)

// Side identifies which team a prediction refers to
type Side int

const (
	SideUnknown Side = iota
	SideHome
	SideAway
)

func (s Side) String() string {
	switch s {
	case SideHome:
		return "home"
	case SideAway:
		return "away"
	default:
		return "unknown"
	}
}

// FavoriteSide identifies whether a spread prediction backs the favorite
type FavoriteSide int

const (
	FavoriteUnknown FavoriteSide = iota
	FavoritePicked
	UnderdogPicked
)

// TotalSide identifies the direction of a totals prediction
type TotalSide int

const (
	TotalUnknown TotalSide = iota
	TotalOver
	TotalUnder
)

// tokenLengthFloor guards token matching against short-word false positives
// ("the", "jet" inside "jettison"). The comparison is strict: a token must
// be at least four characters to match.
const tokenLengthFloor = 3

var spreadLiteral = regexp.MustCompile(`([-+])\s?\d+(\.\d+)?`)

// ResolveSide maps a free-text prediction onto the home or away team.
// Exact full-name containment wins; otherwise token-level matching on city
// and nickname decides. Genuinely ambiguous text resolves to SideUnknown and
// callers must treat that as non-resolvable.
func ResolveSide(text, home, away string) Side {
	t := Normalize(text)
	if t == "" {
		return SideUnknown
	}

	homeExact := strings.Contains(t, Normalize(home))
	awayExact := strings.Contains(t, Normalize(away))
	if homeExact != awayExact {
		if homeExact {
			return SideHome
		}
		return SideAway
	}

	homeToken := matchesTeamTokens(t, home)
	awayToken := matchesTeamTokens(t, away)
	if homeToken != awayToken {
		if homeToken {
			return SideHome
		}
		return SideAway
	}
	return SideUnknown
}

// ResolveFavoriteSide maps a spread prediction onto favorite or underdog.
// Team tokens decide first; if neither team appears, the sign of an embedded
// spread literal ("-3.5" backs the favorite, "+3.5" the underdog) is used.
func ResolveFavoriteSide(text, favorite, underdog string) FavoriteSide {
	t := Normalize(text)
	if t == "" {
		return FavoriteUnknown
	}

	favMatch := matchesTeamTokens(t, favorite)
	dogMatch := matchesTeamTokens(t, underdog)
	if favMatch != dogMatch {
		if favMatch {
			return FavoritePicked
		}
		return UnderdogPicked
	}

	if m := spreadLiteral.FindStringSubmatch(t); m != nil {
		if m[1] == "-" {
			return FavoritePicked
		}
		return UnderdogPicked
	}
	return FavoriteUnknown
}

// ResolveTotalSide maps a totals prediction onto over or under. Explicit
// "over"/"under" tokens decide first, then descriptive phrases.
func ResolveTotalSide(text string) TotalSide {
	t := Normalize(text)
	if t == "" {
		return TotalUnknown
	}

	tokens := tokenSet(t)
	over := tokens["over"]
	under := tokens["under"]
	if over != under {
		if over {
			return TotalOver
		}
		return TotalUnder
	}
	if over && under {
		return TotalUnknown
	}

	for _, phrase := range []string{"high scoring", "high-scoring", "shootout"} {
		if strings.Contains(t, phrase) {
			return TotalOver
		}
	}
	for _, phrase := range []string{"defensive", "ugly", "low scoring", "low-scoring"} {
		if strings.Contains(t, phrase) {
			return TotalUnder
		}
	}
	return TotalUnknown
}

// matchesTeamTokens reports whether the text mentions the team by city or
// nickname. Two-word cities ("New England", "Los Angeles") are matched as a
// phrase; single tokens must be longer than tokenLengthFloor.
func matchesTeamTokens(text, teamName string) bool {
	name := Normalize(teamName)
	if name == "" {
		return false
	}

	fields := strings.Fields(name)
	nickname := fields[len(fields)-1]
	city := strings.Join(fields[:len(fields)-1], " ")

	if len(nickname) > tokenLengthFloor && tokenSet(text)[nickname] {
		return true
	}
	if city != "" {
		if strings.Contains(city, " ") {
			// Multi-word cities are matched as a whole phrase.
			if strings.Contains(text, city) {
				return true
			}
		} else if len(city) > tokenLengthFloor && tokenSet(text)[city] {
			return true
		}
	}
	return false
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

func tokenSet(text string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(nonWord.ReplaceAllString(text, " ")) {
		set[tok] = true
	}
	return set
}
