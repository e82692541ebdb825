// Copyright 2023-2024 daviszhen
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package common

import (
	"errors"
	"fmt"
)

type ErrorCode int

const (
	OK ErrorCode = iota
	Logical
	IllegalType
	IllegalColumn
	SizesOfColumnsDontMatch
	ParameterOutOfBound
	NotImplemented
	CannotAllocateMemory
	BadArguments
	NumberOfArgumentsDoesntMatch
	DecimalOverflow
)

func (c ErrorCode) String() string {
	switch c {
	case OK:
		return "OK"
	case Logical:
		return "LOGICAL_ERROR"
	case IllegalType:
		return "ILLEGAL_TYPE"
	case IllegalColumn:
		return "ILLEGAL_COLUMN"
	case SizesOfColumnsDontMatch:
		return "SIZES_OF_COLUMNS_DOESNT_MATCH"
	case ParameterOutOfBound:
		return "PARAMETER_OUT_OF_BOUND"
	case NotImplemented:
		return "NOT_IMPLEMENTED"
	case CannotAllocateMemory:
		return "CANNOT_ALLOCATE_MEMORY"
	case BadArguments:
		return "BAD_ARGUMENTS"
	case NumberOfArgumentsDoesntMatch:
		return "NUMBER_OF_ARGUMENTS_DOESNT_MATCH"
	case DecimalOverflow:
		return "DECIMAL_OVERFLOW"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(c))
	}
}

// Error carries a code alongside the message so callers can branch on the
// failure class instead of matching strings.
type Error struct {
	Code ErrorCode
	Msg  string
	Prev error
}

func (e *Error) Error() string {
	if e.Prev != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Msg, e.Prev)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Prev
}

func NewError(code ErrorCode, format string, args ...any) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
	}
}

func WrapError(code ErrorCode, prev error, format string, args ...any) *Error {
	return &Error{
		Code: code,
		Msg:  fmt.Sprintf(format, args...),
		Prev: prev,
	}
}

// CodeOf extracts the code of an error produced by this package, or OK
// for nil and Logical for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Logical
}
