package accumulator

import "golang.org/x/xerrors"

var (
	ErrEmptyTree  = xerrors.New("tree is empty")
	ErrNotFound   = xerrors.New("leaf not found")
	ErrUnprovable = xerrors.New("absence can't be proven")
)
