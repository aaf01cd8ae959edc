package views

import (
	"context"

	"github.com/muurk/neptune-screen/internal/logging"
)

// Level is the bed leveling entry. This firmware has no leveling page to
// drive, so showing it only logs.
type Level struct{}

// Show logs the request and leaves the screen as it is.
func (l *Level) Show(context.Context) error {
	logging.Info("Leveling is not available from the screen")
	return nil
}
