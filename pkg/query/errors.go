// Copyright: This file is part of metricq, released under https://github.com/korrel8r/metricq/blob/main/LICENSE

package query

import (
	"errors"
	"fmt"
)

// ParseError is recorded in [Model.Error] when a target cannot be parsed.
// The target falls back to the text editor.
type ParseError struct {
	Message string
	Pos     int
}

func (e ParseError) Error() string { return fmt.Sprintf("%v at position: %v", e.Message, e.Pos) }

func IsParseError(err error) bool { return IsErrorType[ParseError](err) }

// TooManyParamsError is returned when adding a parameter would exceed a function's declared parameters.
type TooManyParamsError struct{ Func string }

func (e TooManyParamsError) Error() string { return "too many parameters for function " + e.Func }

func IsTooManyParamsError(err error) bool { return IsErrorType[TooManyParamsError](err) }

func IsErrorType[T error](err error) bool {
	var target T
	return errors.As(err, &target)
}
