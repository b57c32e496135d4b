// Package lockstep walks two independently sorted record streams in a single pass and emits each primary record
// together with the run of secondary records whose derived key matches it.
package lockstep

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/stellar/go/support/log"
)

// Reader yields records in key order and returns io.EOF after the last one.
type Reader[T any] interface {
	Read() (T, error)
}

// EmitFunc receives a primary record and every secondary record sharing its key.
type EmitFunc[P, S any] func(ctx context.Context, primary P, matches []S) error

type Config[P, S any] struct {
	Primary   Reader[P]
	Secondary Reader[S]
	// PrimaryKey returns the join key of a primary record.
	PrimaryKey func(P) string
	// SecondaryKey derives the join key of a secondary record. An error aborts the run.
	SecondaryKey func(S) (string, error)
	// Compare orders keys. Defaults to strings.Compare.
	Compare func(a, b string) int
	Emit    EmitFunc[P, S]
}

type Stats struct {
	// InputCount is the number of primary records read.
	InputCount int
	// SecondaryCount is the number of secondary records read.
	SecondaryCount int
	// MatchedCount is the number of secondary records delivered with a primary.
	MatchedCount int
	// OutputCount is the number of emissions.
	OutputCount int
	// UnmatchedPrimary is the number of primaries emitted without secondary records.
	UnmatchedPrimary int
	// UnmatchedSecondary is the number of secondary records left after the primary stream ended.
	UnmatchedSecondary int
}

type Correlator[P, S any] struct {
	cfg Config[P, S]

	stats Stats

	// buffered primary group
	group    []P
	groupKey string

	// one record look-ahead on each stream
	nextPrimary      P
	nextPrimaryKey   string
	primaryDone      bool
	nextSecondary    S
	nextSecondaryKey string
	secondaryDone    bool
}

func New[P, S any](cfg Config[P, S]) (*Correlator[P, S], error) {
	if cfg.Primary == nil || cfg.Secondary == nil {
		return nil, errors.New("primary and secondary readers are required")
	}
	if cfg.PrimaryKey == nil || cfg.SecondaryKey == nil {
		return nil, errors.New("primary and secondary key functions are required")
	}
	if cfg.Emit == nil {
		return nil, errors.New("emit function is required")
	}
	if cfg.Compare == nil {
		cfg.Compare = strings.Compare
	}
	return &Correlator[P, S]{cfg: cfg}, nil
}

// Run consumes both streams to the end. The first error stops the run and is returned along with the counters
// accumulated so far.
func (c *Correlator[P, S]) Run(ctx context.Context) (Stats, error) {
	if err := c.advancePrimary(); err != nil {
		return c.stats, err
	}
	if err := c.advanceSecondary(); err != nil {
		return c.stats, err
	}

	for !c.primaryDone {
		if err := ctx.Err(); err != nil {
			return c.stats, fmt.Errorf("correlating records: %w", err)
		}

		if err := c.collectGroup(); err != nil {
			return c.stats, err
		}

		// secondary keys sorting before the current group have no primary
		if !c.secondaryDone && c.cfg.Compare(c.nextSecondaryKey, c.groupKey) < 0 {
			return c.stats, &CardinalityError{Key: c.nextSecondaryKey, Primaries: 0}
		}

		matches, err := c.collectMatches()
		if err != nil {
			return c.stats, err
		}

		if len(c.group) != 1 {
			return c.stats, &CardinalityError{Key: c.groupKey, Primaries: len(c.group), Secondaries: len(matches)}
		}

		if err := c.cfg.Emit(ctx, c.group[0], matches); err != nil {
			return c.stats, fmt.Errorf("emitting %q: %w", c.groupKey, err)
		}
		c.stats.OutputCount++
		c.stats.MatchedCount += len(matches)
		if len(matches) == 0 {
			c.stats.UnmatchedPrimary++
		}
	}

	if err := c.drainSecondary(ctx); err != nil {
		return c.stats, err
	}
	return c.stats, nil
}

// collectGroup buffers every primary record sharing the next key.
func (c *Correlator[P, S]) collectGroup() error {
	c.group = c.group[:0]
	c.groupKey = c.nextPrimaryKey
	for !c.primaryDone && c.nextPrimaryKey == c.groupKey {
		c.group = append(c.group, c.nextPrimary)
		if err := c.advancePrimary(); err != nil {
			return err
		}
	}
	return nil
}

// collectMatches buffers the secondary run whose key equals the current group key.
func (c *Correlator[P, S]) collectMatches() ([]S, error) {
	var matches []S
	for !c.secondaryDone && c.cfg.Compare(c.nextSecondaryKey, c.groupKey) == 0 {
		matches = append(matches, c.nextSecondary)
		if err := c.advanceSecondary(); err != nil {
			return nil, err
		}
	}
	return matches, nil
}

func (c *Correlator[P, S]) drainSecondary(ctx context.Context) error {
	for !c.secondaryDone {
		c.stats.UnmatchedSecondary++
		if err := c.advanceSecondary(); err != nil {
			return err
		}
	}
	if c.stats.UnmatchedSecondary > 0 {
		log.Ctx(ctx).Warnf("%d secondary records had no primary record", c.stats.UnmatchedSecondary)
	}
	return nil
}

func (c *Correlator[P, S]) advancePrimary() error {
	record, err := c.cfg.Primary.Read()
	if errors.Is(err, io.EOF) {
		c.primaryDone = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading primary record %d: %w", c.stats.InputCount+1, err)
	}

	key := c.cfg.PrimaryKey(record)
	if c.stats.InputCount > 0 && c.cfg.Compare(key, c.nextPrimaryKey) < 0 {
		return &OrderError{Stream: "primary", Previous: c.nextPrimaryKey, Key: key}
	}

	c.stats.InputCount++
	c.nextPrimary = record
	c.nextPrimaryKey = key
	return nil
}

func (c *Correlator[P, S]) advanceSecondary() error {
	record, err := c.cfg.Secondary.Read()
	if errors.Is(err, io.EOF) {
		c.secondaryDone = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading secondary record %d: %w", c.stats.SecondaryCount+1, err)
	}

	key, err := c.cfg.SecondaryKey(record)
	if err != nil {
		return fmt.Errorf("deriving key of secondary record %d: %w", c.stats.SecondaryCount+1, err)
	}
	if c.stats.SecondaryCount > 0 && c.cfg.Compare(key, c.nextSecondaryKey) < 0 {
		return &OrderError{Stream: "secondary", Previous: c.nextSecondaryKey, Key: key}
	}

	c.stats.SecondaryCount++
	c.nextSecondary = record
	c.nextSecondaryKey = key
	return nil
}

// PrefixKey returns the part of id before the first "-", or the whole id when it has none.
func PrefixKey(id string) (string, error) {
	key, _, _ := strings.Cut(id, "-")
	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyKey, id)
	}
	return key, nil
}
