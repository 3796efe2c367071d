package config

import (
	"log"
	"time"
)

func MustNonEmpty(value, envName string) {
	if value == "" {
		log.Fatalf("config: missing required env %s", envName)
	}
}

func MustNonEmptyBytes(value []byte, envName string) {
	if len(value) == 0 {
		log.Fatalf("config: missing required env %s", envName)
	}
}

func MustPositive(d time.Duration, envName string) {
	if d <= 0 {
		log.Fatalf("config: %s must be positive, got %s", envName, d)
	}
}
