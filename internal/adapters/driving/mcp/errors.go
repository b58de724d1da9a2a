// Package mcp provides an MCP (Model Context Protocol) server adapter for
// winnow. It lets AI assistants like Claude query the local collection and
// feed documents into it.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")
