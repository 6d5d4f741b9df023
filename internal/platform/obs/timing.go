package obs

import (
	"time"

	"github.com/hashicorp/go-hclog"
)

// Time logs the duration (and error, if any) of the named operation.
// Usage: defer obs.Time(log, "store.UpsertShipment")(&err)
func Time(log hclog.Logger, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		if errp != nil && *errp != nil {
			log.Debug("op failed", "op", name, "dur_ms", dur.Milliseconds(), "err", *errp)
			return
		}
		log.Debug("op done", "op", name, "dur_ms", dur.Milliseconds())
	}
}
