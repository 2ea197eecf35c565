/*
Copyright © 2026 the GISAS authors.
This file is part of GISAS.

GISAS is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

GISAS is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with GISAS.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package fresnel provides a concurrency-safe map from wavevectors to the
// specular coefficients of a layer stack, so that the transfer-matrix
// solution for a given direction is only computed once per run.
package fresnel

import (
	"sync"
	"sync/atomic"

	"github.com/golang/groupcache/lru"
	"github.com/golang/groupcache/singleflight"
	"github.com/spatialmodel/gisas"
	"github.com/spatialmodel/gisas/geometry"
	"github.com/spatialmodel/gisas/internal/hash"
	"github.com/spatialmodel/gisas/specular"
)

// Solver computes the coefficients of all slices of a stack.
type Solver func(stack *gisas.Stack, k geometry.R3) []specular.Coefficients

// Map holds the specular coefficients of a stack for incoming waves and
// for the time-reversed outgoing waves, which propagate in the stack with
// inverted magnetic induction.
type Map struct {
	stack, inverted *gisas.Stack

	solve     Solver
	useCache  bool
	cacheSize int

	in, out *table

	hits, misses int64
}

// An Option configures a Map.
type Option func(*Map)

// UseCache turns caching on or off. Without the cache every lookup
// solves the stack again.
func UseCache(b bool) Option {
	return func(m *Map) { m.useCache = b }
}

// CacheSize sets the maximum number of wavevectors remembered for each
// direction. Zero, the default, means no limit.
func CacheSize(n int) Option {
	return func(m *Map) { m.cacheSize = n }
}

// WithSolver overrides the solver chosen from the stack.
func WithSolver(s Solver) Option {
	return func(m *Map) { m.solve = s }
}

// NewMap returns a map for stack. The scalar solver is used for
// non-magnetic stacks and the matrix solver otherwise.
func NewMap(stack *gisas.Stack, opts ...Option) *Map {
	m := &Map{
		stack:    stack,
		inverted: stack.InvertB(),
		useCache: true,
	}
	if stack.IsScalar() {
		m.solve = specular.ScalarList
	} else {
		m.solve = specular.MatrixList
	}
	for _, o := range opts {
		o(m)
	}
	m.in = newTable(m.cacheSize)
	m.out = newTable(m.cacheSize)
	return m
}

// Stack returns the stack the map was created for.
func (m *Map) Stack() *gisas.Stack { return m.stack }

// In returns the coefficients of every slice for the incoming vacuum
// wavevector k. The returned slice is shared and must not be modified.
func (m *Map) In(k geometry.R3) []specular.Coefficients {
	return m.get(m.in, m.stack, k)
}

// Out returns the coefficients of every slice for the outgoing vacuum
// wavevector kf. They are computed for -kf in the stack with inverted
// magnetic induction.
func (m *Map) Out(kf geometry.R3) []specular.Coefficients {
	return m.get(m.out, m.inverted, kf.Neg())
}

// InLayer returns the incoming coefficients of slice i.
func (m *Map) InLayer(k geometry.R3, i int) specular.Coefficients { return m.In(k)[i] }

// OutLayer returns the outgoing coefficients of slice i.
func (m *Map) OutLayer(kf geometry.R3, i int) specular.Coefficients { return m.Out(kf)[i] }

// Stats returns the number of cache hits and misses so far.
func (m *Map) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&m.hits), atomic.LoadInt64(&m.misses)
}

func (m *Map) get(t *table, stack *gisas.Stack, k geometry.R3) []specular.Coefficients {
	if !m.useCache {
		return m.solve(stack, k)
	}
	key := hash.Float64s(k.X, k.Y, k.Z)
	if c, ok := t.lookup(key); ok {
		atomic.AddInt64(&m.hits, 1)
		return c
	}
	v, _ := t.group.Do(key, func() (interface{}, error) {
		if c, ok := t.lookup(key); ok {
			atomic.AddInt64(&m.hits, 1)
			return c, nil
		}
		atomic.AddInt64(&m.misses, 1)
		c := m.solve(stack, k)
		t.mu.Lock()
		t.cache.Add(key, c)
		t.mu.Unlock()
		return c, nil
	})
	return v.([]specular.Coefficients)
}

// table is the cache for one propagation direction.
type table struct {
	mu    sync.Mutex
	cache *lru.Cache
	group singleflight.Group
}

func newTable(size int) *table {
	return &table{cache: lru.New(size)}
}

func (t *table) lookup(key string) ([]specular.Coefficients, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	v, ok := t.cache.Get(key)
	if !ok {
		return nil, false
	}
	return v.([]specular.Coefficients), true
}
