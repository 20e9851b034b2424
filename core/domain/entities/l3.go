package entities

// IPAddresses holds the primary addresses of an interface, empty when unset.
type IPAddresses struct {
	IPv4 string `json:"ipv4_address"`
	IPv6 string `json:"ipv6_address"`
}

// VeInterface describes a virtual ethernet (routing) interface.
type VeInterface struct {
	Name       string `json:"interface_name"`
	IfName     string `json:"if_name"`
	State      string `json:"interface_state"`
	ProtoState string `json:"interface_proto_state"`
	IPAddress  string `json:"ip_address"`
}

// AddressFamilies reports which address families a VRF has enabled.
type AddressFamilies struct {
	IPv4 bool `json:"ipv4"`
	IPv6 bool `json:"ipv6"`
}
