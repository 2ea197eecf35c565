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

import "strings"

// ConfigError is returned when a simulation is set up inconsistently. It
// is detected before any computation.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "simulation: " + e.Msg }

// WorkerError collects the failures of the workers of a run.
type WorkerError struct {
	Errs []error
}

func (e *WorkerError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return "simulation: worker failure: " + strings.Join(msgs, "; ")
}
