// Package services contains the core business logic, orchestrating
// domain operations through the driven ports. Services implement the
// driving port interfaces consumed by the CLI and MCP adapters.
package services
