// Package tracking issues tracking numbers for new shipments.
package tracking

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"regexp"
	"time"
)

// Pattern is the shape every issued tracking number satisfies.
var Pattern = regexp.MustCompile(`^[A-Z]{2,4}\d{8,}\d{4}$`)

var prefixPattern = regexp.MustCompile(`^[A-Z]{2,4}$`)

// ErrExhausted means every candidate drawn was already taken.
var ErrExhausted = errors.New("tracking: no free tracking number after max attempts")

// Generator produces tracking numbers that are unique across all shipments.
type Generator interface {
	Generate(ctx context.Context) (string, error)
}

// ExistsFunc reports whether a tracking number is already assigned.
type ExistsFunc func(ctx context.Context, trackingNumber string) (bool, error)

// DateGenerator issues <prefix><YYYYMMDD><4 random digits>.
type DateGenerator struct {
	prefix      string
	exists      ExistsFunc
	maxAttempts int
	now         func() time.Time
}

func NewDateGenerator(prefix string, exists ExistsFunc) (*DateGenerator, error) {
	if !prefixPattern.MatchString(prefix) {
		return nil, fmt.Errorf("tracking: prefix %q must be 2-4 uppercase letters", prefix)
	}
	return &DateGenerator{
		prefix:      prefix,
		exists:      exists,
		maxAttempts: 10,
		now:         time.Now,
	}, nil
}

func (g *DateGenerator) Generate(ctx context.Context) (string, error) {
	for i := 0; i < g.maxAttempts; i++ {
		candidate, err := g.candidate()
		if err != nil {
			return "", err
		}

		taken, err := g.exists(ctx, candidate)
		if err != nil {
			return "", fmt.Errorf("tracking: check %s: %w", candidate, err)
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", ErrExhausted
}

func (g *DateGenerator) candidate() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(10000))
	if err != nil {
		return "", fmt.Errorf("tracking: random suffix: %w", err)
	}
	return fmt.Sprintf("%s%s%04d", g.prefix, g.now().UTC().Format("20060102"), n.Int64()), nil
}
