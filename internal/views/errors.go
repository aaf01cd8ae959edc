package views

import "errors"

var (
	// ErrUnknownMaterial is returned for a material with no temperature preset.
	ErrUnknownMaterial = errors.New("unknown material")

	// ErrEmptySlot is returned when a file list slot with no file is selected.
	ErrEmptySlot = errors.New("empty file slot")
)
