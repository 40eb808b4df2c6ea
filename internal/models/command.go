package models

// CommandType enumerates the remote commands a server may issue to a
// specific device.
type CommandType string

const (
	CommandLock CommandType = "lock"
	CommandWipe CommandType = "wipe"
)

// RemoteCommand is one server-issued instruction pending delivery to a
// device. Commands are idempotent by ID: a client tolerates redelivery
// and acknowledges each time it is received.
type RemoteCommand struct {
	ID        string      `json:"id"`
	DeviceID  string      `json:"-"`
	Type      CommandType `json:"type"`
	CreatedAt int64       `json:"created_at"`
	Acked     bool        `json:"-"`
}
