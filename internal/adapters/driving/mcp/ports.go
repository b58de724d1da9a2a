package mcp

import (
	"github.com/winnowlabs/winnow/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Retrieval answers queries and accepts documents.
	Retrieval driving.RetrievalService

	// Admin exposes collection statistics.
	Admin driving.AdminService

	// Document provides read access to the collection.
	Document driving.DocumentService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	// Admin and Document are optional; their tools and resources are
	// simply not offered without them.
	return nil
}
