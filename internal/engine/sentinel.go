package engine

import "time"

// EndOfRun is the sentinel timestamp used to force-settle every still-open
// position once the last split's test window is exhausted. It is a fixed
// far-future instant rather than time.Time's maximum representable value,
// so arithmetic and formatting on it (logs, storage) never overflow or
// produce a platform-dependent string.
var EndOfRun = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)
