package state

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"

	"github.com/moldworks/moldtrack/internal/model"
)

// newTaskID generates a short human-readable task id of the form
// "{phase initial}-{3 digits}" that is unique within taken. Random
// suffixes are tried first; if the 3-digit space for the phase is
// exhausted the suffix falls back to a uuid fragment.
func newTaskID(phase model.Phase, taken map[string]bool) string {
	initial := "D"
	if phase != "" {
		initial = string(phase[0])
	}

	for attempt := 0; attempt < 200; attempt++ {
		id := fmt.Sprintf("%s-%d", initial, 100+rand.Intn(900))
		if !taken[id] {
			return id
		}
	}

	// Random probing failed; scan the space deterministically.
	for n := 100; n < 1000; n++ {
		id := fmt.Sprintf("%s-%d", initial, n)
		if !taken[id] {
			return id
		}
	}

	return fmt.Sprintf("%s-%s", initial, uuid.New().String()[:8])
}

// newTrialID generates a unique id for a trial record.
func newTrialID() string {
	return "tr-" + uuid.New().String()
}
