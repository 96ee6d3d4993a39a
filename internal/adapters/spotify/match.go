package spotify

import "strings"

const (
	minTitleSimilarity   = 0.65
	minArtistSimilarity  = 0.55
	minOverallSimilarity = 0.70
	titleWeight          = 0.7
)

// matchQuery is a requested title and artist, normalized once per search.
type matchQuery struct {
	title  string
	artist string
}

func newMatchQuery(title string, artist string) matchQuery {
	return matchQuery{
		title:  normalizeSearchInput(title),
		artist: normalizeSearchInput(artist),
	}
}

// score weighs title over artist. Without a requested artist only the title
// is scored.
func (q matchQuery) score(candidate spotifyTrack) (float64, bool) {
	candidateTitle := normalizeSearchInput(candidate.Name)
	if q.title == "" || candidateTitle == "" {
		return 0, false
	}

	titleSim := similarity(q.title, candidateTitle)
	if q.artist == "" {
		return titleSim, titleSim >= minOverallSimilarity
	}

	artistSim := q.artistSimilarity(candidate)
	score := titleWeight*titleSim + (1-titleWeight)*artistSim
	ok := titleSim >= minTitleSimilarity && artistSim >= minArtistSimilarity && score >= minOverallSimilarity
	return score, ok
}

// artistSimilarity takes the best of each credited artist and the whole
// credit line, so featured guests on the candidate do not count against a
// request that names only the lead artist.
func (q matchQuery) artistSimilarity(candidate spotifyTrack) float64 {
	best := 0.0
	for _, artist := range candidate.Artists {
		if name := normalizeSearchInput(artist.Name); name != "" {
			best = max(best, similarity(q.artist, name))
		}
	}
	if credits := normalizeSearchInput(joinArtistNames(candidate)); credits != "" {
		best = max(best, similarity(q.artist, credits))
	}
	return best
}

// similarity is 1 minus the edit distance relative to the longer string.
func similarity(a string, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

// editDistance is the Levenshtein distance over runes, kept to two rows.
func editDistance(a []rune, b []rune) int {
	row := make([]int, len(b)+1)
	for j := range row {
		row[j] = j
	}
	for i := 1; i <= len(a); i++ {
		diag := row[0]
		row[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			diag, row[j] = row[j], min(row[j]+1, row[j-1]+1, diag+cost)
		}
	}
	return row[len(b)]
}

func joinArtistNames(track spotifyTrack) string {
	names := make([]string, 0, len(track.Artists))
	for _, artist := range track.Artists {
		names = append(names, artist.Name)
	}
	return strings.Join(names, " ")
}
