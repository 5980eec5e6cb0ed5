package models

// Connection status of a WhatsApp instance. This dimension is independent
// from the active flag and the scraper execution status.
const (
	ConnectionConnected    = "conectada"
	ConnectionDisconnected = "desconectada"
)

// StateOpen is the upstream sentinel for a live WhatsApp session.
const StateOpen = "open"

// ConnectionFromState maps the raw upstream session state to the logical
// connection status shown in the panel.
func ConnectionFromState(state string) string {
	if state == StateOpen {
		return ConnectionConnected
	}
	return ConnectionDisconnected
}

// Instance is a WhatsApp connection slot.
type Instance struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Connection string `json:"connection"`
	Token      string `json:"token"`
	// Sent and Received are not populated by the upstream API yet.
	Sent            int    `json:"sent"`
	Received        int    `json:"received"`
	LastConnectedAt string `json:"last_connected_at"`
	CreatedAt       string `json:"created_at"`
}

// InstanceStatus is one observation of the status endpoint, including the
// pairing material needed to reconnect a dropped instance.
type InstanceStatus struct {
	InstanceName string `json:"instance_name"`
	State        string `json:"state"`
	PairingCode  string `json:"pairing_code"`
	Code         string `json:"code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	Count        int    `json:"count"`
}

func (s InstanceStatus) Connection() string {
	return ConnectionFromState(s.State)
}
