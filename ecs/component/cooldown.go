package component

// Cooldown counts down in seconds. It is ready once Remaining reaches zero.
type Cooldown struct {
	Seconds   float64
	Remaining float64
}

func (c *Cooldown) Ready() bool {
	return c.Remaining <= 0
}

// Start restarts the countdown from Seconds.
func (c *Cooldown) Start() {
	c.Remaining = c.Seconds
}

// Advance counts down by dt and reports whether the cooldown just finished.
func (c *Cooldown) Advance(dt float64) bool {
	if c.Remaining <= 0 {
		return false
	}
	c.Remaining -= dt
	if c.Remaining <= 0 {
		c.Remaining = 0
		return true
	}
	return false
}
