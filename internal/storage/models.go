package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// PortfolioEntry is one row of the portfolio catalog: a tech-stack
// descriptor and the portfolio link that demonstrates it.
type PortfolioEntry struct {
	ID         string
	Descriptor string
	Link       string
	CreatedAt  time.Time
}
