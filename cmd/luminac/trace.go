package main

import "github.com/google/uuid"

// newRunID generates the id attached to diagnostic output when --trace is
// set, so separate invocations in a build log stay distinguishable.
func newRunID() string {
	return uuid.NewString()
}
