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

import "fmt"

// State is the stage a simulation is in.
type State int

// The states of a run, in order. A run ends either Completed or Failed.
const (
	Idle State = iota
	Preparing
	Running
	Averaging
	Normalizing
	Completed
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Preparing:
		return "preparing"
	case Running:
		return "running"
	case Averaging:
		return "averaging"
	case Normalizing:
		return "normalizing"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}
