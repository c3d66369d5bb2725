package xtesting

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// UniqueName returns a name with the given prefix that is unique across
// processes. It is lowercase, making it suitable for S3 buckets and DynamoDB
// tables alike.
func UniqueName(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}

var (
	sequenceM sync.Mutex
	sequences = map[string]uint64{}
)

// SequentialName returns a name with the given prefix that is unique within
// this process.
func SequentialName(prefix string) string {
	sequenceM.Lock()
	defer sequenceM.Unlock()

	sequences[prefix]++
	return fmt.Sprintf("%s-%d", prefix, sequences[prefix])
}
