// Package mcp builds the Model Context Protocol server that exposes a CLI.
//
// The server registers one tool per catalog entry, routes calls to the
// dispatcher, exposes the filtered command schema as the cli://schema
// resource, and offers a prompt describing how to read forwarded logs.
// When a log channel is configured, Serve forwards its messages to the
// connected client for the lifetime of the session.
package mcp
