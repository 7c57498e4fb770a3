package utils

import "time"

// Clock abstracts time.Now so due-time logic can be tested deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func SystemClock() Clock {
	return systemClock{}
}

// FixedClock всегда возвращает одно и то же время. Используется в тестах.
type FixedClock struct {
	T time.Time
}

func (c *FixedClock) Now() time.Time { return c.T }

func (c *FixedClock) Advance(d time.Duration) {
	c.T = c.T.Add(d)
}
