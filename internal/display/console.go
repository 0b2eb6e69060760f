package display

import "log"

// Console renders the status lines to the process log. It is the
// default surface for bench runs without the OLED attached.
type Console struct{}

// NewConsole returns a log-backed renderer.
func NewConsole() *Console { return &Console{} }

// Render logs both lines in a fixed-width frame.
func (c *Console) Render(lines [2]string) error {
	log.Printf("display: |%-16s|", lines[0])
	log.Printf("display: |%-16s|", lines[1])
	return nil
}
