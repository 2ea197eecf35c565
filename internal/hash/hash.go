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

// Package hash creates cache keys.
package hash

import (
	"encoding/binary"
	"encoding/gob"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"math"

	"github.com/davecgh/go-spew/spew"
)

// Hash returns a hash key for the specified object.
func Hash(object interface{}) string {
	if s, ok := object.(fmt.Stringer); ok {
		return s.String()
	}
	h := fnv.New128a()

	e := gob.NewEncoder(h)
	if err := e.Encode(object); err == nil {
		bKey := h.Sum([]byte{})
		return fmt.Sprintf("%x", bKey[0:h.Size()])
	}
	// If gob fails (e.g., unregistered interface values in a sample)
	// use spew instead.
	h.Reset()
	printer := spew.ConfigState{
		Indent:                  " ",
		SortKeys:                true,
		DisableMethods:          true,
		SpewKeys:                true,
		DisablePointerAddresses: true,
		DisableCapacities:       true,
	}
	printer.Fprintf(h, "%#v", object)
	bKey := h.Sum([]byte{})
	return fmt.Sprintf("%x", bKey[0:h.Size()])
}

// Canonical maps negative zero to positive zero so that values which
// compare equal also produce equal keys. All other values, NaN included,
// are returned unchanged.
func Canonical(x float64) float64 {
	if x == 0 {
		return 0
	}
	return x
}

// Float64s returns a key built from the exact bit patterns of vals.
// Two calls return the same key if and only if the arguments compare
// equal element by element (with -0 == +0).
func Float64s(vals ...float64) string {
	b := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(Canonical(v)))
	}
	return hex.EncodeToString(b)
}
