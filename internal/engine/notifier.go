package engine

import (
	"github.com/talgya/keystroke-kingdom/internal/events"
	"github.com/talgya/keystroke-kingdom/internal/score"
)

// Notifier is the presentation-layer hook surface. The engine calls
// these and ignores anything they return; implementations must never
// block the simulation.
type Notifier interface {
	ShowInsight(id string)
	ShowAchievementUnlock(a score.Achievement)
	ShowEventChoicePrompt(def *events.Definition)
	ShowEventResult(message string)
}

// NopNotifier discards every notification. Used headless and in tests.
type NopNotifier struct{}

func (NopNotifier) ShowInsight(string)                       {}
func (NopNotifier) ShowAchievementUnlock(score.Achievement)  {}
func (NopNotifier) ShowEventChoicePrompt(*events.Definition) {}
func (NopNotifier) ShowEventResult(string)                   {}
