package storage

// DeviceState is the client-side state that survives a process
// restart but is distinct from the vault itself: the device's own
// identity and its current session tokens.
type DeviceState struct {
	DeviceID             string `json:"device_id"`
	DeviceName           string `json:"device_name"`
	Login                string `json:"login"`
	AccessToken          string `json:"access_token"`
	RefreshToken         string `json:"refresh_token"`
	AccessTokenExpiresAt int64  `json:"access_token_expires_at"`
}

// IsRegistered reports whether device state has been persisted from a
// prior register/login call.
func (d DeviceState) IsRegistered() bool {
	return d.DeviceID != "" && d.RefreshToken != ""
}
