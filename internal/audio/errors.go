package audio

import "errors"

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrProbeFailed indicates FFmpeg could not determine the audio duration.
var ErrProbeFailed = errors.New("audio probe failed")

// ErrChunkingFailed indicates FFmpeg failed during chunk extraction.
var ErrChunkingFailed = errors.New("audio chunking failed")

// ErrChunkPlan indicates a computed chunk span was empty or negative.
var ErrChunkPlan = errors.New("invalid chunk plan")

// ErrShrinkFloor indicates the chunk length was shrunk to the minimum and
// the size limit still cannot be satisfied.
var ErrShrinkFloor = errors.New("chunk size limit unsatisfiable at minimum length")

// ErrInvalidShrinkFactor indicates a shrink factor outside (0, 1).
var ErrInvalidShrinkFactor = errors.New("shrink factor must be between 0 and 1")

// ErrReleaseIncomplete indicates some chunk files could not be removed.
var ErrReleaseIncomplete = errors.New("chunk release incomplete")
