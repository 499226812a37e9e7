package pgx

import (
	"context"
	"fmt"

	"github.com/ontoreview/backend/pkg/logger"
)

// DeleteNode removes a node by persisted id. Incident edges go with it via
// the foreign-key cascade on the edges table. Returns false when the id does
// not exist.
func (s *GraphDBStorage) DeleteNode(ctx context.Context, nodeID int64) (bool, error) {
	tag, err := s.conn.Exec(ctx, `DELETE FROM nodes WHERE id = $1`, nodeID)
	if err != nil {
		return false, fmt.Errorf("failed to delete node %d: %w", nodeID, err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	logger.Info("[Graph] Node deleted", "node_id", nodeID)
	return true, nil
}
