package entities

const (
	GatewayLayer2Extension = "layer2-extension"
	GatewayHardwareVTEP    = "hardware-vtep"

	MinDuplicateMACTimer = 5
	MaxDuplicateMACTimer = 300
	MinDuplicateMACCount = 3
	MaxDuplicateMACCount = 10
)

// OverlayGateway is the configured VXLAN overlay gateway.
type OverlayGateway struct {
	Name       string `json:"gw_name"`
	Type       string `json:"gw_type"`
	LoopbackID int    `json:"loopback_id"`
	Activate   bool   `json:"activate"`
	VNIAuto    bool   `json:"vni_auto"`
}

// EVPNInstance is the configured EVPN instance.
type EVPNInstance struct {
	Name              string `json:"evi_name"`
	DuplicateMACTimer int    `json:"duplicate_mac_timer"`
	MaxCount          int    `json:"max_count"`
}
