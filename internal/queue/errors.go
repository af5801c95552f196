package queue

import "errors"

// ErrUnknownClient is returned by Drain when clientID has no live
// subscription (it was never subscribed, or Unsubscribe already removed
// it).
var ErrUnknownClient = errors.New("queue: unknown client")
