// Package domain defines the MCP tool surface for scene control: typed tool
// inputs and results, tool schemas, and handler factories bound to the scene
// capability interfaces.
package domain
