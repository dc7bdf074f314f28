package types

// Assert returns an ErrAssertionFailed error when cond is false, nil otherwise.
//
//	if err := types.Assert(req != nil, "request is required"); err != nil {
//		return nil, err
//	}
func Assert(cond bool, message string) error {
	if cond {
		return nil
	}
	return NewError(ErrAssertionFailed, message)
}
