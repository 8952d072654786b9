// Package driving provides interfaces for the primary (inbound) ports.
// The HTTP handlers and the MCP tool surface both dispatch through
// these; neither owns any pipeline logic.
package driving
