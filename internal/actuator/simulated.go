package actuator

import (
	"context"
	"sync"

	"github.com/tphakala/snore-go/internal/logging"
)

const simulatedName = "simulated"

// Simulated is the no-hardware backend used for development and CI. It
// always succeeds and records the commands it receives.
type Simulated struct {
	mu       sync.Mutex
	commands []Command
}

// NewSimulated creates a simulated controller.
func NewSimulated() *Simulated {
	return &Simulated{}
}

func (s *Simulated) Name() string { return simulatedName }

func (s *Simulated) HealthCheck() error { return nil }

// Activate records and logs the command. The pulse itself is not slept
// through: a simulated motor needs no pulse width.
func (s *Simulated) Activate(_ context.Context, cmd Command) error {
	s.mu.Lock()
	s.commands = append(s.commands, cmd)
	s.mu.Unlock()

	logging.HumanReadable().Info("Simulated vibration",
		"intensity", cmd.Intensity, "duration", cmd.Duration.String())
	return nil
}

func (s *Simulated) Close() error { return nil }

// Commands returns a copy of all commands received so far.
func (s *Simulated) Commands() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Command, len(s.commands))
	copy(out, s.commands)
	return out
}
