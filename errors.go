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

package gisas

import "fmt"

// DomainError reports a physically meaningless sample or instrument
// description, such as an empty layer stack or a negative thickness.
// It is returned before any numerical work is done.
type DomainError struct {
	Msg string
}

func (e *DomainError) Error() string { return "gisas: " + e.Msg }

// DomainErrorf creates a DomainError with a formatted message.
func DomainErrorf(format string, a ...interface{}) error {
	return &DomainError{Msg: fmt.Sprintf(format, a...)}
}
