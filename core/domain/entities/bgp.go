package entities

import (
	"net/netip"
	"strconv"
	"strings"
)

const (
	AFIIPv4 = "ipv4"
	AFIIPv6 = "ipv6"

	MinBGPMaxPaths     = 1
	MaxBGPMaxPaths     = 64
	DefaultBGPMaxPaths = 8
)

// BGPNeighbor is a peer configured in the default VRF.
type BGPNeighbor struct {
	Address  string `json:"neighbor_address"`
	RemoteAS uint32 `json:"remote_as"`
}

// ParseASN parses a 4-byte AS number in asplain notation.
func ParseASN(s string) (uint32, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil || n == 0 {
		return 0, InvalidParameter("asn %q must be between 1 and 4294967295", s)
	}
	return uint32(n), nil
}

// BGPLocalASNParams sets the local AS of the BGP process.
type BGPLocalASNParams struct {
	ASN uint32
}

func (p BGPLocalASNParams) Validate() error {
	if p.ASN == 0 {
		return InvalidParameter("local asn must be between 1 and 4294967295")
	}
	return nil
}

// BGPNeighborParams adds or removes a default VRF neighbor. RemoteAS is
// ignored on delete.
type BGPNeighborParams struct {
	Address  netip.Addr
	RemoteAS uint32
	Delete   bool
}

func (p BGPNeighborParams) Validate() error {
	if !p.Address.IsValid() {
		return InvalidParameter("a valid neighbor address is required")
	}
	if !p.Delete && p.RemoteAS == 0 {
		return InvalidParameter("remote-as is required when adding neighbor %s", p.Address)
	}
	return nil
}

// AFI is the address family of the neighbor address.
func (p BGPNeighborParams) AFI() string {
	if p.Address.Unmap().Is4() {
		return AFIIPv4
	}
	return AFIIPv6
}

// BGPMaxPathsParams sets ECMP maximum-paths for one address family. An
// empty AFI means ipv4 and zero Paths means DefaultBGPMaxPaths.
type BGPMaxPathsParams struct {
	AFI    string
	Paths  int
	Delete bool
}

func (p BGPMaxPathsParams) Validate() error {
	if err := ValidateAFI(p.AFI); err != nil {
		return err
	}
	if p.Delete || p.Paths == 0 {
		return nil
	}
	if p.Paths < MinBGPMaxPaths || p.Paths > MaxBGPMaxPaths {
		return InvalidParameter("maximum-paths %d must be between %d and %d", p.Paths, MinBGPMaxPaths, MaxBGPMaxPaths)
	}
	return nil
}

// ValidateAFI accepts ipv4, ipv6 or empty.
func ValidateAFI(afi string) error {
	switch afi {
	case "", AFIIPv4, AFIIPv6:
		return nil
	}
	return InvalidParameter("address family %q, specify %s or %s", afi, AFIIPv4, AFIIPv6)
}
