// Package xtelemetry contains helpers shared by the instrumented property store
// and keyspace wrappers.
package xtelemetry

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"
)

var handleCounter atomic.Uint64

// HandleID returns a unique identifier for an open handle of the given kind,
// such as "store" or "keyspace".
//
// The counter component is shared across kinds so that the order in which
// handles were opened is visible in the logs. The UUID component correlates the
// handle across processes.
func HandleID(kind string) string {
	return fmt.Sprintf(
		"%s#%d %s",
		kind,
		handleCounter.Add(1),
		uuid.NewString(),
	)
}
