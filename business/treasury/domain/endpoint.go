// Package domain contains the core domain types for the treasury context.
package domain

import (
	"errors"
	"fmt"
)

// ErrEmptyPool is returned when a pool is constructed without endpoints.
var ErrEmptyPool = errors.New("endpoint pool cannot be empty")

// Endpoint is an immutable RPC endpoint bound to one network.
type Endpoint struct {
	URL     string
	ChainID uint64
}

func (e Endpoint) String() string {
	return fmt.Sprintf("%s (chain %d)", e.URL, e.ChainID)
}

// Pool is an ordered, cyclic sequence of interchangeable endpoints with a
// current-index cursor. It is not safe for concurrent use on its own; the
// connection manager serializes access.
type Pool struct {
	endpoints []Endpoint
	cursor    int
}

// NewPool creates a pool over the given RPC URLs, all bound to chainID.
// Order is preserved: the first URL is the preferred endpoint.
func NewPool(chainID uint64, urls []string) (*Pool, error) {
	if len(urls) == 0 {
		return nil, ErrEmptyPool
	}

	endpoints := make([]Endpoint, len(urls))
	for i, url := range urls {
		endpoints[i] = Endpoint{URL: url, ChainID: chainID}
	}

	return &Pool{endpoints: endpoints}, nil
}

// Current returns the endpoint under the cursor.
func (p *Pool) Current() Endpoint {
	return p.endpoints[p.cursor]
}

// Advance moves the cursor to the next endpoint, wrapping around, and
// returns the new current endpoint.
func (p *Pool) Advance() Endpoint {
	p.cursor = (p.cursor + 1) % len(p.endpoints)
	return p.endpoints[p.cursor]
}

// Peek returns the endpoint n positions after the cursor without moving it.
func (p *Pool) Peek(n int) Endpoint {
	return p.endpoints[(p.cursor+n)%len(p.endpoints)]
}

// Size returns the number of endpoints in the pool.
func (p *Pool) Size() int {
	return len(p.endpoints)
}
