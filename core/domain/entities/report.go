package entities

import "time"

// InventoryReport is the port-channel inventory of one switch at a point in time.
type InventoryReport struct {
	Target       string      `json:"target"`
	Platform     string      `json:"platform"`
	CollectedAt  time.Time   `json:"collected_at"`
	PortChannels []LagRecord `json:"port_channels"`
}
