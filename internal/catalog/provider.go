package catalog

import "sync/atomic"

// Provider hands out the current catalog to concurrent scans and swaps it
// wholesale on reload. Readers never observe a half-updated rule set: the
// catalog behind the pointer is immutable.
type Provider struct {
	cur atomic.Pointer[Catalog]
}

// NewProvider creates a provider serving c.
func NewProvider(c *Catalog) *Provider {
	p := &Provider{}
	p.cur.Store(c)
	return p
}

// Current returns the catalog in effect right now. Scans in flight keep
// the catalog they started with.
func (p *Provider) Current() *Catalog {
	return p.cur.Load()
}

// Swap replaces the served catalog and returns the previous one.
func (p *Provider) Swap(c *Catalog) *Catalog {
	return p.cur.Swap(c)
}
