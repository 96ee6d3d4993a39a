package domain

import (
	"fmt"
	"strings"
)

// Mood is one of the fixed listening moods a user can pick.
type Mood string

const (
	MoodChill     Mood = "chill"
	MoodHappy     Mood = "happy"
	MoodEnergetic Mood = "energetic"
)

// Moods lists the moods in the order they are offered.
var Moods = []Mood{MoodHappy, MoodChill, MoodEnergetic}

// moodClusters is a hand-authored business rule, not learned from data.
var moodClusters = map[Mood]int{
	MoodChill:     0,
	MoodHappy:     1,
	MoodEnergetic: 2,
}

var moodLabels = map[Mood]string{
	MoodChill:     "😌 Chill / Relax",
	MoodHappy:     "😊 Happy / Party",
	MoodEnergetic: "🔥 Energetic",
}

// ParseMood accepts either the display label or the slug.
// Anything else is rejected instead of falling back to a default cluster.
func ParseMood(s string) (Mood, error) {
	trimmed := strings.TrimSpace(s)
	for m, label := range moodLabels {
		if trimmed == label {
			return m, nil
		}
	}
	if m := Mood(strings.ToLower(trimmed)); moodLabels[m] != "" {
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMood, s)
}

// Label returns the decorated display label.
func (m Mood) Label() string { return moodLabels[m] }

// Cluster returns the cluster id mapped to the mood.
func (m Mood) Cluster() (int, error) {
	c, ok := moodClusters[m]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownMood, string(m))
	}
	return c, nil
}
