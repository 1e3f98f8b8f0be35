// Package id mints run identifiers. One id tags a whole pipeline pass
// so its log lines, snapshots and export artifacts can be correlated.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Generator creates opaque run IDs suitable for external references.
type Generator interface {
	NewRunID() (string, error)
}

// RunGenerator produces sortable ids: a UTC timestamp prefix plus a
// random hex suffix to disambiguate concurrent runs.
type RunGenerator struct {
	now func() time.Time
}

func NewRunGenerator() *RunGenerator {
	return &RunGenerator{now: time.Now}
}

func (g *RunGenerator) NewRunID() (string, error) {
	buf := make([]byte, 6)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return g.now().UTC().Format("20060102-150405") + "-" + hex.EncodeToString(buf), nil
}
