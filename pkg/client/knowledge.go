package client

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
)

// ListDocuments returns the knowledge-base documents, ordered by module name
// and then title.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var out struct {
		Documents []Document `json:"documents"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/documents", nil, &out); err != nil {
		return nil, err
	}
	return out.Documents, nil
}

// ModuleStats returns indexing statistics for a module.
func (c *Client) ModuleStats(ctx context.Context, moduleID int) (*ModuleStats, error) {
	var out ModuleStats
	path := "/api/module_stats/" + strconv.Itoa(moduleID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, fmt.Errorf("module %d: %w", moduleID, err)
	}
	return &out, nil
}
