package priority

import "errors"

// ErrInvalidInput is returned when the ranker is given an empty draw set or a
// draw outside [0, N). The upstream task-count floor keeps this from happening
// in normal operation.
var ErrInvalidInput = errors.New("priority: invalid input")
