package importer

import "errors"

var (
	// ErrNoScene is returned when the set has no scene to translate.
	ErrNoScene = errors.New("set contains no scene")

	// ErrMalformedKeyFrames is returned when keyframe data cannot be translated.
	ErrMalformedKeyFrames = errors.New("malformed keyframes")
)
