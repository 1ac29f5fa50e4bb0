package errors

// Wrap wraps an error under the given taxonomy value.
func Wrap(ae Error, err error) error {
	if err == nil {
		return nil
	}
	return ae.NewError(err)
}

// WrapWithStatus wraps a standard error, forcing the given status unless the
// error already carries one.
func WrapWithStatus(ae Error, err error, status int) error {
	if err == nil {
		return nil
	}

	if e, ok := err.(Error); ok {
		if e.Status == 0 {
			e.Status = status
		}
		return e
	}

	n := ae.NewError(err)
	n.Status = status
	return n
}

func WrapNotFound(err error) error {
	return Wrap(ErrorRouteNotFound, err)
}

func WrapGeneric(err error) error {
	return Wrap(ErrorGeneric, err)
}

// Unwind walks wrapped Errors back to the innermost one, converting plain
// errors (nil included) into ErrorGeneric.
func Unwind(err error) Error {
	if err == nil {
		return ErrorGeneric.NewError(nil)
	}
	if ae, ok := err.(Error); ok {
		if inner, ok := ae.Err.(Error); ok {
			return Unwind(inner)
		}
		return ae
	}
	return ErrorGeneric.NewError(err)
}
