package main

import "errors"

// Sentinel errors for command operations
var (
	ErrShortCircuit        = errors.New("access chain short-circuited")
	ErrInputFileNotExist   = errors.New("input file does not exist")
	ErrNoInput             = errors.New("no input document: pass --input or set input in the config file")
	ErrInvalidVar          = errors.New("variable must be in name=expression format")
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidLogLevel     = errors.New("invalid log level")
	ErrNoPaths             = errors.New("no paths to check")
)
