/*
 * errors.go, part of lgf.
 *
 * Copyright 2026 The lgf authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package lgf

import "fmt"

//Error is the interface for errors that all packages in this library implement.
//The Decorate method allows to add and retrieve info from the error, without
//changing its type or wrapping it around something else. The decorate slice
//should contain a list of functions in the calling stack, plus, for each
//function, any relevant information, in the format "FunctionName: Extra info".
type Error interface {
	Error() string
	Decorate(string) []string
	Critical() bool
}

//CError is the concrete error type used across the library. Configuration
//errors (bad method names, mismatched region sizes, malformed input shapes)
//and I/O failures are critical; diagnostic conditions that a batch run can
//survive are not.
type CError struct {
	msg      string
	deco     []string
	critical bool
}

//NewError returns a critical error with the given message.
func NewError(format string, a ...interface{}) *CError {
	return &CError{msg: fmt.Sprintf(format, a...), critical: true}
}

//NewWarning returns a non-critical error with the given message.
func NewWarning(format string, a ...interface{}) *CError {
	return &CError{msg: fmt.Sprintf(format, a...), critical: false}
}

func (err *CError) Error() string { return err.msg }

//Decorate adds dec to the decoration slice of the error and returns the
//resulting slice. An empty string only retrieves the current value.
func (err *CError) Decorate(dec string) []string {
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//Critical returns whether the error ends the run or can be reported and ignored.
func (err *CError) Critical() bool { return err.critical }

//errDecorate asserts that err implements lgf.Error and decorates it with the
//caller's name before returning it. Non-lgf errors are wrapped first.
func errDecorate(err error, caller string) error {
	err2, ok := err.(Error)
	if !ok {
		err2 = NewError("%v", err)
	}
	err2.Decorate(caller)
	return err2
}

//PanicMsg is the message type used for panics. For recoverable conditions use
//Error instead. Panics here mean the program, not the input, is wrong.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrAtomOutOfRange   = PanicMsg("lgf: requested atom out of range")
	ErrNilGrid          = PanicMsg("lgf: operation on a nil grid")
	ErrCoordsShape      = PanicMsg("lgf: coordinate slice length is not 3x the atom count")
	ErrForceShape       = PanicMsg("lgf: force slice length does not match the region")
	ErrRegionboundaries = PanicMsg("lgf: region boundaries are not monotonically increasing")
)
