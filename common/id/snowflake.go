package id

import (
	"strconv"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node *snowflake.Node
	once sync.Once
)

// Init initializes the Snowflake node with the given node ID.
func Init(nodeID int64) error {
	var err error
	once.Do(func() {
		node, err = snowflake.NewNode(nodeID)
	})
	return err
}

// New generates a new globally unique int64 ID using the Snowflake algorithm.
// IDs are time-ordered and unique across distributed instances.
func New() int64 {
	return node.Generate().Int64()
}

// NewString returns a new ID in its decimal string form, the shape batch ids take
// outside the Mongo backend.
func NewString() string {
	return strconv.FormatInt(New(), 10)
}

// Valid reports whether s is a decimal snowflake id.
func Valid(s string) bool {
	if s == "" {
		return false
	}
	v, err := strconv.ParseInt(s, 10, 64)
	return err == nil && v > 0
}
