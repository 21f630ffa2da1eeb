// Package service wires the scene MCP server: it assembles the in-memory
// scene, the optional sqlite snapshot store, and the MCP transports, and
// registers the domain tool and resource handlers.
package service
