package derive

import (
	"fmt"
	"regexp"
	"sync"
	"time"
)

const TrackingPrefix = "RT"

var trackingCodePattern = regexp.MustCompile(`^RT[0-9]{10}$`)

func IsTrackingCode(code string) bool {
	return trackingCodePattern.MatchString(code)
}

// TrackingIssuer hands out RT + zero padded Unix seconds. Within one process
// every code is distinct: a second request in the same clock second gets the
// next unused second instead of colliding.
type TrackingIssuer struct {
	now Clock

	mu   sync.Mutex
	last int64
}

func NewTrackingIssuer(now Clock) *TrackingIssuer {
	if now == nil {
		now = time.Now
	}
	return &TrackingIssuer{now: now}
}

func (t *TrackingIssuer) Issue() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	sec := t.now().Unix()
	if sec <= t.last {
		sec = t.last + 1
	}
	t.last = sec
	return formatTrackingCode(sec)
}

// Assign keeps a caller supplied code and issues one otherwise. It reports
// whether the code was issued here.
func (t *TrackingIssuer) Assign(code *string) bool {
	if *code != "" {
		return false
	}
	*code = t.Issue()
	return true
}

func formatTrackingCode(sec int64) string {
	return fmt.Sprintf("%s%010d", TrackingPrefix, sec)
}
