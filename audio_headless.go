//go:build headless

package main

import "errors"

func newLiveSink(rate int) (sampleSink, error) {
	return nil, errors.New("live playback is not available in headless builds")
}
