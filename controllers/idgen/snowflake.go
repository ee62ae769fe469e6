package idgen

import (
	"log"
	"sync"

	"github.com/bwmarrin/snowflake"
)

var (
	node     *snowflake.Node
	nodeOnce sync.Once
	nodeID   int64 = 1
)

// Init sets the snowflake node number. It must run before the first
// GenerateID call to have any effect.
func Init(id int64) {
	nodeID = id
	ensureNode()
}

func ensureNode() {
	nodeOnce.Do(func() {
		var err error
		node, err = snowflake.NewNode(nodeID)
		if err != nil {
			log.Fatalf("Failed to init Snowflake: %v", err)
		}
	})
}

func GenerateID() int64 {
	ensureNode()
	return node.Generate().Int64()
}
