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

package simulation

import (
	"fmt"
	"runtime"
)

// Options control how a simulation is run.
type Options struct {
	// NumBatches splits the elements into contiguous batches, of which
	// only CurrentBatch is computed. This allows a run to be distributed
	// over several processes.
	NumBatches   int
	CurrentBatch int

	// NumThreads is the number of worker goroutines per batch. Zero
	// means one per CPU; negative values mean one.
	NumThreads int

	// MonteCarlo integrates every pixel with MCPoints random points.
	MonteCarlo bool
	MCPoints   int

	// UseAvgMaterials slices layers that hold particles and replaces
	// their material by the volume-averaged one.
	UseAvgMaterials bool

	// IncludeSpecular adds the specularly reflected beam to the pixel
	// that contains it.
	IncludeSpecular bool

	// FresnelCache caches specular coefficients per wavevector, keeping
	// at most FresnelCacheSize entries (0 means no limit).
	FresnelCache     bool
	FresnelCacheSize int
}

// DefaultOptions returns options for a single-batch run on all CPUs
// with caching enabled.
func DefaultOptions() Options {
	return Options{
		NumBatches:   1,
		MCPoints:     50,
		FresnelCache: true,
	}
}

func (o Options) validate() error {
	if o.NumBatches < 1 {
		return &ConfigError{Msg: fmt.Sprintf("number of batches=%d but should be >0", o.NumBatches)}
	}
	if o.CurrentBatch < 0 || o.CurrentBatch >= o.NumBatches {
		return &ConfigError{Msg: fmt.Sprintf("batch index %d is not below the number of batches %d", o.CurrentBatch, o.NumBatches)}
	}
	if o.MonteCarlo && o.MCPoints < 1 {
		return &ConfigError{Msg: fmt.Sprintf("Monte-Carlo integration with %d points", o.MCPoints)}
	}
	if o.FresnelCacheSize < 0 {
		return &ConfigError{Msg: fmt.Sprintf("Fresnel cache size=%d but should be >= 0", o.FresnelCacheSize)}
	}
	return nil
}

// threads returns the number of workers for n elements.
func (o Options) threads(n int) int {
	t := o.NumThreads
	if t == 0 {
		t = runtime.NumCPU()
	}
	if t < 1 {
		t = 1
	}
	if t > n {
		t = n
	}
	if t < 1 {
		t = 1
	}
	return t
}

// split returns the range [start, end) of part i when n items are split
// into parts contiguous ranges whose sizes differ by at most one, the
// larger ones first.
func split(n, parts, i int) (start, end int) {
	size, rem := n/parts, n%parts
	start = i*size + min(i, rem)
	end = start + size
	if i < rem {
		end++
	}
	return start, end
}
