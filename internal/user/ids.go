package user

import (
	"fmt"

	"github.com/bwmarrin/snowflake"
)

// SnowflakeIDs issues time-ordered numeric string ids.
type SnowflakeIDs struct {
	node *snowflake.Node
}

func NewSnowflakeIDs(nodeID int64) (*SnowflakeIDs, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeIDs{node: node}, nil
}

func (g *SnowflakeIDs) NewID() string {
	return g.node.Generate().String()
}
