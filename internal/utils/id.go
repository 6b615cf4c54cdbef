package utils

import (
	"strconv"
	"time"

	nanoid "github.com/jaevor/go-nanoid"
)

const (
	suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	suffixLength   = 9
)

var randomSuffix = mustGenerator(nanoid.CustomASCII(suffixAlphabet, suffixLength))

func mustGenerator(gen func() string, err error) func() string {
	if err != nil {
		panic("id generator: " + err.Error())
	}
	return gen
}

// NewMessageID returns an id made of the base36 millisecond timestamp and a
// random suffix, so ids sort roughly by time and do not collide within a tick.
func NewMessageID(at time.Time) string {
	return strconv.FormatInt(at.UnixMilli(), 36) + randomSuffix()
}
