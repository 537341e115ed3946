// Package logging forwards application and subprocess log output to the
// connected MCP client as logging notifications.
//
// Producers write to a Channel, either directly with Params or through a
// slog.Handler returned by NewHandler. Forward drains the channel into the
// client session while the server runs.
//
// Logger names identify the source of a message:
//   - "stderr": stderr of a tool subprocess, with meta {"tool": name}
//   - "app": in-process application logs written through the handler
//   - anything else: application-defined names
//
// Changing these names or the level mapping requires updating Instructions
// and Guide, which describe them to clients.
package logging
