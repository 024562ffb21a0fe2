package actormesh

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies no goroutine started by a test (drain loops, ask
// timers) is still running once the whole package's
// tests have finished.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		// time.AfterFunc timers use the runtime's own internal timer
		// goroutine, which goleak's default ignore list already covers;
		// no extra IgnoreTopFunction entries have been needed so far.
	)
}
