package dbpool

import (
	"fmt"
	"sync"

	bspec "github.com/adamcooper1386/bintest/internal/spec"
)

// postSetupSnapshot is the implicit snapshot name isolation: per_file
// restores from before every test in the file.
const postSetupSnapshot = "__post_setup__"

// Pool is the per-file lazy pool of DatabaseClients keyed by logical name
// ("per-file DB pool"). A database is not opened until
// its first use, and a mutex per logical name serializes calls into it so
// parallel tests within a file never interleave statements on the same
// connection.
type Pool struct {
	defs map[string]bspec.DatabaseDef

	mu      sync.Mutex
	clients map[string]Client
	locks   map[string]*sync.Mutex
	order   []string // open order, for reverse-order Close
}

// NewPool builds a pool over the resolved database definitions for one
// file. Nothing is opened yet.
func NewPool(defs map[string]bspec.DatabaseDef) *Pool {
	return &Pool{
		defs:    defs,
		clients: make(map[string]Client),
		locks:   make(map[string]*sync.Mutex),
	}
}

func (p *Pool) get(name string) (Client, *sync.Mutex, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[name]; ok {
		return c, p.locks[name], nil
	}

	def, ok := p.defs[name]
	if !ok {
		return nil, nil, fmt.Errorf("undefined database %q", name)
	}
	c, err := Open(def)
	if err != nil {
		return nil, nil, err
	}
	p.clients[name] = c
	p.locks[name] = &sync.Mutex{}
	p.order = append(p.order, name)
	return c, p.locks[name], nil
}

// With opens (if needed) and locks the named database for the duration of
// fn, so no two goroutines ever touch the same underlying connection at
// once.
func (p *Pool) With(name string, fn func(Client) error) error {
	c, lock, err := p.get(name)
	if err != nil {
		return err
	}
	lock.Lock()
	defer lock.Unlock()
	return fn(c)
}

// SnapshotPostSetup takes the implicit "post-setup" snapshot on every
// database whose isolation is per_file. Called once, after a file's setup
// actions complete.
func (p *Pool) SnapshotPostSetup() error {
	for name, def := range p.defs {
		if def.Isolation != bspec.IsolationPerFile {
			continue
		}
		if err := p.With(name, func(c Client) error { return c.Snapshot(postSetupSnapshot) }); err != nil {
			return err
		}
	}
	return nil
}

// RestorePostSetup restores every per_file database to its post-setup
// snapshot. Called before each test in the file begins.
func (p *Pool) RestorePostSetup() error {
	for name, def := range p.defs {
		if def.Isolation != bspec.IsolationPerFile {
			continue
		}
		if err := p.With(name, func(c Client) error { return c.Restore(postSetupSnapshot) }); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every opened client in reverse order of opening.
func (p *Pool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for i := len(p.order) - 1; i >= 0; i-- {
		name := p.order[i]
		if err := p.clients[name].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
