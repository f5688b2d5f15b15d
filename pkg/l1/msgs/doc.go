// Package msgs provides the typed message envelope of the remote command
// protocol and all message schemas.
//
// Commands flow from a controller (CLI, automation) to a device, replies
// and events flow back. Every message is wrapped in a Typed envelope whose
// type ID selects the schema and whose sequence correlates a reply with
// its command.
package msgs
