package entities

import (
	"net/netip"
	"strconv"
	"strings"
)

const (
	MinVLAN            = 1
	MaxVLAN            = 4090
	MinVe              = 1
	MaxVe              = 255
	MinLoopback        = 1
	MaxLoopback        = 64
	MinPortChannel     = 1
	MaxPortChannel     = 256
	MaxNameLength      = 64
	MaxDescriptionSize = 64
)

// ValidateVLAN checks a VLAN id against the supported range.
func ValidateVLAN(vlan int) error {
	if vlan < MinVLAN || vlan > MaxVLAN {
		return InvalidParameter("vlan %d must be between %d and %d", vlan, MinVLAN, MaxVLAN)
	}
	return nil
}

// ValidateVe checks a virtual ethernet id.
func ValidateVe(ve int) error {
	if ve < MinVe || ve > MaxVe {
		return InvalidParameter("ve %d must be between %d and %d", ve, MinVe, MaxVe)
	}
	return nil
}

func validateInterfaceNumber(key InterfaceKey) error {
	switch key.Type {
	case InterfaceLoopback, InterfaceVe:
		n, ok := atoi(key.Name)
		if !ok {
			return InvalidParameter("%s name %q must be numeric", key.Type, key.Name)
		}
		if key.Type == InterfaceVe {
			return ValidateVe(n)
		}
		if n < MinLoopback || n > MaxLoopback {
			return InvalidParameter("loopback %d must be between %d and %d", n, MinLoopback, MaxLoopback)
		}
	}
	return nil
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

func validateKey(key InterfaceKey, allowed ...InterfaceType) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if len(allowed) > 0 {
		ok := false
		for _, t := range allowed {
			if key.Type == t {
				ok = true
				break
			}
		}
		if !ok {
			return InvalidParameter("interface type %s not allowed here, must be one of %v", key.Type, allowed)
		}
	}
	return validateInterfaceNumber(key)
}

// AdminStateParams enables or shuts down an interface.
type AdminStateParams struct {
	Interface InterfaceKey
	Enabled   bool
}

func (p AdminStateParams) Validate() error {
	return validateKey(p.Interface)
}

// DescriptionParams sets an interface description.
type DescriptionParams struct {
	Interface   InterfaceKey
	Description string
}

func (p DescriptionParams) Validate() error {
	if err := validateKey(p.Interface); err != nil {
		return err
	}
	if len(p.Description) > MaxDescriptionSize {
		return InvalidParameter("description must be at most %d characters", MaxDescriptionSize)
	}
	return nil
}

// VLANInterfacesParams creates VLANs, optionally naming them.
type VLANInterfacesParams struct {
	VLANs       []int
	Description string
}

func (p VLANInterfacesParams) Validate() error {
	if len(p.VLANs) == 0 {
		return InvalidParameter("at least one vlan is required")
	}
	for _, v := range p.VLANs {
		if err := ValidateVLAN(v); err != nil {
			return err
		}
	}
	if len(p.Description) > MaxDescriptionSize {
		return InvalidParameter("vlan name must be at most %d characters", MaxDescriptionSize)
	}
	return nil
}

// AccessVLANParams assigns (or removes) an untagged VLAN on a switchport.
type AccessVLANParams struct {
	Interface InterfaceKey
	VLAN      int
	Delete    bool
}

func (p AccessVLANParams) Validate() error {
	if err := validateKey(p.Interface, InterfaceEthernet, InterfacePortChannel); err != nil {
		return err
	}
	return ValidateVLAN(p.VLAN)
}

// PortChannelParams creates a LAG from member ports.
type PortChannelParams struct {
	Number     int
	Name       string
	Mode       AggregationMode
	MemberType InterfaceType
	Ports      []string
}

func (p PortChannelParams) Validate() error {
	if p.Number < MinPortChannel || p.Number > MaxPortChannel {
		return InvalidParameter("port-channel id %d must be between %d and %d", p.Number, MinPortChannel, MaxPortChannel)
	}
	if len(p.Name) < 1 || len(p.Name) > MaxNameLength {
		return InvalidParameter("port-channel name must be 1 to %d characters", MaxNameLength)
	}
	if strings.ContainsAny(p.Name, " \t") {
		return InvalidParameter("port-channel name %q must not contain whitespace", p.Name)
	}
	if _, err := ParseAggregationMode(string(p.Mode)); err != nil {
		return InvalidParameter("mode %q must be static or dynamic", p.Mode)
	}
	if len(p.Ports) == 0 {
		return InvalidParameter("at least one member port is required")
	}
	memberType := p.MemberType
	if memberType == "" {
		memberType = InterfaceEthernet
	}
	for _, port := range p.Ports {
		if err := validateKey(InterfaceKey{Type: memberType, Name: port}, InterfaceEthernet); err != nil {
			return err
		}
	}
	return nil
}

// IPAddressParams adds or removes an address on an interface.
type IPAddressParams struct {
	Interface InterfaceKey
	Address   netip.Prefix
	Delete    bool
}

func (p IPAddressParams) Validate() error {
	if err := validateKey(p.Interface); err != nil {
		return err
	}
	if !p.Address.IsValid() {
		return InvalidParameter("a valid address/prefix is required")
	}
	return nil
}

// InterfaceVRFParams binds an interface to a VRF.
type InterfaceVRFParams struct {
	Interface InterfaceKey
	VRF       string
	Delete    bool
}

func (p InterfaceVRFParams) Validate() error {
	if err := validateKey(p.Interface); err != nil {
		return err
	}
	if strings.TrimSpace(p.VRF) == "" {
		return InvalidParameter("vrf name is required")
	}
	return nil
}

// VeParams creates a virtual ethernet interface.
type VeParams struct {
	Ve     int
	Delete bool
}

func (p VeParams) Validate() error {
	return ValidateVe(p.Ve)
}

// VlanRouterVeParams attaches a router interface to a VLAN.
type VlanRouterVeParams struct {
	VLAN   int
	Ve     int
	Delete bool
}

func (p VlanRouterVeParams) Validate() error {
	if err := ValidateVLAN(p.VLAN); err != nil {
		return err
	}
	return ValidateVe(p.Ve)
}

// LinkLocalParams toggles IPv6 on an interface.
type LinkLocalParams struct {
	Interface InterfaceKey
	Enabled   bool
}

func (p LinkLocalParams) Validate() error {
	return validateKey(p.Interface)
}

// ACLRuleParams describes one extended ACL rule.
type ACLRuleParams struct {
	ACLName     string
	SeqID       int
	Action      string
	Protocol    string
	Source      string
	Destination string
	Mirror      bool
	Log         bool
}

// OverlayGatewayParams configures a VXLAN overlay gateway.
type OverlayGatewayParams struct {
	Name       string
	Type       string
	LoopbackID int
	VNIAuto    bool
}

func (p OverlayGatewayParams) Validate() error {
	if len(p.Name) < 1 || len(p.Name) > MaxNameLength {
		return InvalidParameter("gateway name must be 1 to %d characters", MaxNameLength)
	}
	switch p.Type {
	case "", GatewayLayer2Extension, GatewayHardwareVTEP:
	default:
		return InvalidParameter("gateway type %q, specify %s or %s", p.Type, GatewayLayer2Extension, GatewayHardwareVTEP)
	}
	if p.LoopbackID < MinLoopback || p.LoopbackID > MaxLoopback {
		return InvalidParameter("loopback %d must be between %d and %d", p.LoopbackID, MinLoopback, MaxLoopback)
	}
	return nil
}

// EVPNInstanceParams configures an EVPN instance and its duplicate MAC
// detection.
type EVPNInstanceParams struct {
	Name              string
	DuplicateMACTimer int
	MaxCount          int
}

func (p EVPNInstanceParams) Validate() error {
	if len(p.Name) < 1 || len(p.Name) > MaxNameLength {
		return InvalidParameter("evpn instance name must be 1 to %d characters", MaxNameLength)
	}
	if p.DuplicateMACTimer < MinDuplicateMACTimer || p.DuplicateMACTimer > MaxDuplicateMACTimer {
		return InvalidParameter("duplicate mac timer %d must be between %d and %d",
			p.DuplicateMACTimer, MinDuplicateMACTimer, MaxDuplicateMACTimer)
	}
	if p.MaxCount < MinDuplicateMACCount || p.MaxCount > MaxDuplicateMACCount {
		return InvalidParameter("duplicate mac max count %d must be between %d and %d",
			p.MaxCount, MinDuplicateMACCount, MaxDuplicateMACCount)
	}
	return nil
}
