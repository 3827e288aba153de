package push

import "errors"

// ErrConfiguration marks a missing credential or env value; fatal before any
// work starts.
var ErrConfiguration = errors.New("push: configuration error")

// ErrCredential marks a failed assertion signing or token exchange; fatal for
// the whole dispatch attempt since no recipient can be reached without a token.
var ErrCredential = errors.New("push: credential error")
