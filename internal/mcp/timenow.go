package mcp

import "time"

// timeNow is swapped in tests that need a fixed reference instant.
var timeNow = func() time.Time {
	return time.Now().UTC()
}
