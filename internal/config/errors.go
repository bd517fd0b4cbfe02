package config

import "errors"

var (
	// ErrInvalidKey reports a key the file format cannot store: empty,
	// or containing '=', '#', or a newline.
	ErrInvalidKey = errors.New("invalid config key")

	// ErrInvalidSyntax reports a line (or a value about to be written)
	// that does not fit the key=value format.
	ErrInvalidSyntax = errors.New("invalid config syntax")

	// ErrNotDirectory reports an output path that exists as a file.
	ErrNotDirectory = errors.New("not a directory")

	// ErrNotWritable reports an output directory the process cannot
	// write into.
	ErrNotWritable = errors.New("directory not writable")
)
