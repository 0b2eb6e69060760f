package display

import (
	"log"
	"sync"
	"time"
)

// Renderer puts two formatted lines on a physical or virtual surface.
type Renderer interface {
	Render(lines [2]string) error
}

// Screen arbitrates between routine status rotation and alerts. Alerts
// render immediately and then hold the surface for the dwell period so
// a 2-second scan cycle cannot wipe a bin-full warning before anyone
// reads it.
type Screen struct {
	r     Renderer
	dwell time.Duration
	now   func() time.Time

	mu         sync.Mutex
	alertUntil time.Time
}

// NewScreen wraps a renderer with alert-dwell arbitration.
func NewScreen(r Renderer, alertDwell time.Duration) *Screen {
	return &Screen{r: r, dwell: alertDwell, now: time.Now}
}

// Show renders the event unless a recent alert still owns the surface.
// Render failures are logged, never propagated; a broken display must
// not stop the mission.
func (s *Screen) Show(ev Event) {
	s.mu.Lock()
	if ev.IsAlert() {
		s.alertUntil = s.now().Add(s.dwell)
	} else if ev.isRoutine() && s.now().Before(s.alertUntil) {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	if err := s.r.Render(Lines(ev)); err != nil {
		log.Printf("display: render: %v", err)
	}
}
