// Package setpoint derives the tolerance band around a control setpoint.
package setpoint

// Band is the (Low, High) interval around Center, Deadband wide on each side.
// Low and High are always recomputed from the latest Center and Deadband; no
// clamping is applied and a negative deadband is accepted as-is.
type Band struct {
	Center   float64 `json:"center"`
	Deadband float64 `json:"deadband"`
	Low      float64 `json:"low"`
	High     float64 `json:"high"`
}

// SetCenter updates the center and recomputes the edges from the last deadband.
func (b *Band) SetCenter(v float64) {
	b.Center = v
	b.recompute()
}

// SetDeadband updates the deadband and recomputes the edges from the last center.
func (b *Band) SetDeadband(v float64) {
	b.Deadband = v
	b.recompute()
}

func (b *Band) recompute() {
	b.Low = b.Center - b.Deadband
	b.High = b.Center + b.Deadband
}
