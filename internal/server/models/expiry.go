package models

import (
	"fmt"
	"strings"
	"time"
)

// Unlimited is the Expire value of a token that never expires.
const Unlimited int64 = -1

// ExpiryPolicy computes the absolute expiry of a token from its creation time.
// Both arguments and the result are seconds since epoch.
type ExpiryPolicy interface {
	Expire(created int64) int64
}

// Lifetime is a policy relative to the creation time. A zero or negative
// lifetime produces tokens that never expire.
type Lifetime time.Duration

// NeverExpire is the policy for tokens without an expiry.
const NeverExpire = Lifetime(0)

func (l Lifetime) Expire(created int64) int64 {
	if l <= 0 {
		return Unlimited
	}

	return created + int64(time.Duration(l)/time.Second)
}

func (l Lifetime) String() string {
	if l <= 0 {
		return "unlimited"
	}

	return time.Duration(l).String()
}

// Deadline is a policy with a fixed point in time, regardless of creation time.
type Deadline time.Time

func (d Deadline) Expire(int64) int64 {
	return time.Time(d).Unix()
}

// ParseLifetime parses a duration string such as "48h". "unlimited" and "-1"
// are accepted for tokens that never expire.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unlimited", "-1", "never":
		return NeverExpire, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid lifetime %q: %w", s, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("invalid lifetime %q: must be positive, or unlimited", s)
	}

	return Lifetime(d), nil
}
