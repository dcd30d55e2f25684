package myshiptracking

import (
	"math/rand"

	browser "github.com/EDDYCJY/fake-useragent"
)

// UserAgentProvider hands out the User-Agent header for each page request.
type UserAgentProvider interface {
	UserAgent() string
}

type UserAgentFunc func() string

func (f UserAgentFunc) UserAgent() string {
	return f()
}

// RandomUserAgent draws a fresh browser user agent for every request.
var RandomUserAgent UserAgentProvider = UserAgentFunc(browser.Random)

type StaticUserAgent string

func (s StaticUserAgent) UserAgent() string {
	return string(s)
}

// RotatingUserAgents picks uniformly from a fixed list.
type RotatingUserAgents []string

func (r RotatingUserAgents) UserAgent() string {
	if len(r) == 0 {
		return ""
	}
	return r[rand.Intn(len(r))]
}
