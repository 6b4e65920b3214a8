// Package realtime is the chat channel: a Socket.IO connection with presence,
// an append-only message stream and a composer.
package realtime

import "github.com/trainerhub/poketrainer/internal"

var log = internal.Component("realtime")

// Event names used on the chat channel
const (
	EventMessage           = "message"
	EventUserConnected     = "user_connected"
	EventUserDisconnected  = "user_disconnected"
	EventConnectedUsers    = "connected_users_list"
	EventGetConnectedUsers = "get_connected_users"
)

// PresenceEvents all carry a full {id: name} snapshot
var PresenceEvents = []string{EventConnectedUsers, EventUserConnected, EventUserDisconnected}
