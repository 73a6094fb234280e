package writeback

// Transact runs fn and, only if it returns nil, commit. An error or panic in
// fn leaves the file on disk exactly as it was: nothing is written and the
// in-memory changes are the caller's to discard.
func Transact(fn func() error, commit func() error) error {
	if err := fn(); err != nil {
		return err
	}
	return commit()
}
