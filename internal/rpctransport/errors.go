package rpctransport

import "errors"

var errTimeout = errors.New("rpctransport: call timed out")
