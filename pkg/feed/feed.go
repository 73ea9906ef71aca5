// Package feed parses the line-oriented order feed.
//
// Each line is a comma-separated order request:
//
//	B,100322,5103,7500          limit order  (side, id, price, quantity)
//	S,100345,5103,100000,10000  iceberg order (side, id, price, quantity, peak)
//
// Blank lines and lines containing '#' are skipped.
package feed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/AlexandruValeanu/IceBook/pkg/core"
	"github.com/nikolaydubina/fpdecimal"
)

var (
	// ErrFieldCount is returned when a line does not have 4 or 5 fields
	ErrFieldCount = errors.New("line must have 4 or 5 comma-separated fields")
	// ErrBadSide is returned when the side field is not B or S
	ErrBadSide = errors.New("side must be B or S")
)

// Parser turns feed lines into orders, stamping each with the given clock
type Parser struct {
	clock core.Clock
}

// NewParser creates a new Parser using the provided clock for order timestamps
func NewParser(clock core.Clock) (*Parser, error) {
	if clock == nil {
		return nil, core.ErrNilClock
	}
	return &Parser{clock: clock}, nil
}

// ParseLine parses a single feed line into an order.
// Returns (nil, nil) for blank and comment lines.
func (p *Parser) ParseLine(line string) (*core.Order, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.Contains(line, "#") {
		return nil, nil
	}

	tokens := strings.Split(line, ",")
	if len(tokens) != 4 && len(tokens) != 5 {
		return nil, fmt.Errorf("%w: got %d", ErrFieldCount, len(tokens))
	}
	for i, token := range tokens {
		tokens[i] = strings.TrimSpace(token)
	}

	var side core.Side
	switch tokens[0] {
	case "B":
		side = core.Buy
	case "S":
		side = core.Sell
	default:
		return nil, fmt.Errorf("%w: got %q", ErrBadSide, tokens[0])
	}

	orderID := tokens[1]

	price, err := fpdecimal.FromString(tokens[2])
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", tokens[2], err)
	}

	quantity, err := fpdecimal.FromString(tokens[3])
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", tokens[3], err)
	}

	if len(tokens) == 4 {
		return core.NewLimitOrder(orderID, side, quantity, price, p.clock)
	}

	peak, err := fpdecimal.FromString(tokens[4])
	if err != nil {
		return nil, fmt.Errorf("invalid peak %q: %w", tokens[4], err)
	}

	return core.NewIcebergOrder(orderID, side, quantity, price, peak, p.clock)
}

// Each parses the feed line by line, invoking fn for every order.
// Parsing stops at the first malformed line or fn error.
func (p *Parser) Each(r io.Reader, fn func(*core.Order) error) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		order, err := p.ParseLine(scanner.Text())
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		if order == nil {
			continue
		}
		if err := fn(order); err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
	}
	return scanner.Err()
}
