package ports

import (
	"context"

	"github.com/ewilliams-labs/soundclusters/internal/core/domain"
)

// MoodInterpreter maps a free-text description onto one of the fixed moods.
type MoodInterpreter interface {
	InterpretMood(ctx context.Context, message string) (domain.Mood, error)
}
