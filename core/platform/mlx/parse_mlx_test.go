package mlx

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/carlosrabelo/switchkit/core/cliscrape"
	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const lagBriefOutput = `Total number of LAGs:          2
Total number of deployed LAGs: 1
Total number of trunks created:1 (127 available)
LACP System Priority / ID:     1 / 0024.3889.7e00
LACP Long timeout:             120, default: 120
LACP Short timeout:            3, default: 3

LAG                     Type     Deploy Trunk   Primary Port List
po50                    dynamic  Y      1       2/1     e 2/1 to 2/2
po60                    static   N      2       3/1     e 3/1
`

const lacpOutput = `Port   [Sys P] [Port P] [ Key ] [Act][Tio][Agg][Syn][Col][Dis][Def][Exp][Ope]
2/1 ACTR     1        1    20000   Yes   L   Agg  Syn  Col  Dis  No   No   Ope
2/1 PRTR     1        1    20000   Yes   L   Agg  Syn  Col  Dis  No   No   Ope
2/2 ACTR     1        1    20000   Yes   L   Agg  Syn  Col  Dis  No   No   Ope
2/2 PRTR     1        1    20001   Yes   L   Agg  Syn  No   No   No   No   Ope

Port    RxPkts   RxErrs  TxPkts   TxErrs
2/1     0 1200 0 3400
2/2     0 0 0 0
`

func TestParseLagBrief(t *testing.T) {
	got, err := parseLagBrief(cliscrape.SplitLines(lagBriefOutput))
	if err != nil {
		t.Fatalf("parseLagBrief() unexpected error: %v", err)
	}
	want := []entities.LagSummary{
		{Name: "po50", Mode: entities.ModeDynamic, Deployed: true, TrunkID: "1", PrimaryPort: "2/1"},
		{Name: "po60", Mode: entities.ModeStatic, Deployed: false, TrunkID: "2", PrimaryPort: "3/1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseLagBrief() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLagBriefUnknownMode(t *testing.T) {
	lines := []string{"LAG Type Deploy Trunk Primary", "po1 keepalive Y 1 1/1", ""}
	if _, err := parseLagBrief(lines); !errors.Is(err, entities.ErrMalformedPayload) {
		t.Errorf("parseLagBrief() error = %v, want ErrMalformedPayload", err)
	}
}

func TestParseLacpMembers(t *testing.T) {
	got, err := parseLacpMembers(cliscrape.SplitLines(lacpOutput))
	if err != nil {
		t.Fatalf("parseLacpMembers() unexpected error: %v", err)
	}
	want := map[string]entities.LacpMemberStatus{
		"2/1": {
			Port: "2/1", ActorOperKey: "20000", PartnerOperKey: "20000",
			ActorActivity: true, ActorAggregation: true, ActorSync: true, ActorCollecting: true, ActorDistributing: true,
			PartnerActivity: true, PartnerAggregation: true, PartnerSync: true, PartnerCollecting: true, PartnerDistributing: true,
			RxCount: 1200, TxCount: 3400,
		},
		"2/2": {
			Port: "2/2", ActorOperKey: "20000", PartnerOperKey: "20001",
			ActorActivity: true, ActorAggregation: true, ActorSync: true, ActorCollecting: true, ActorDistributing: true,
			PartnerActivity: true, PartnerAggregation: true, PartnerSync: true,
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parseLacpMembers() mismatch (-want +got):\n%s", diff)
	}
	if !got["2/1"].InSync() || got["2/2"].InSync() {
		t.Errorf("InSync() = %v/%v, want true/false", got["2/1"].InSync(), got["2/2"].InSync())
	}
}

func TestParseLacpMembersMissingRows(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
	}{
		{"no partner row", []string{
			"2/1 ACTR 1 1 20000 Yes L Agg Syn Col Dis No No Ope",
			"2/1 0 10 0 20",
		}},
		{"no counters", []string{
			"2/1 ACTR 1 1 20000 Yes L Agg Syn Col Dis No No Ope",
			"2/1 PRTR 1 1 20000 Yes L Agg Syn Col Dis No No Ope",
		}},
		{"truncated state row", []string{
			"2/1 ACTR 1 1 20000 Yes L Agg",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := parseLacpMembers(tt.lines); !errors.Is(err, entities.ErrFieldNotFound) {
				t.Errorf("parseLacpMembers() error = %v, want ErrFieldNotFound", err)
			}
		})
	}
}

func TestParseLacpMembersDeviceError(t *testing.T) {
	lines := []string{"Error: LAG po99 not found"}
	if _, err := parseLacpMembers(lines); !errors.Is(err, entities.ErrDevice) {
		t.Errorf("parseLacpMembers() error = %v, want ErrDevice", err)
	}
}

func TestParseIPAddresses(t *testing.T) {
	v4 := []string{"  ip address: 10.10.10.1/24 Primary"}
	if got := parseIPv4Address(v4); got != "10.10.10.1/24" {
		t.Errorf("parseIPv4Address() = %q", got)
	}
	if got := parseIPv4Address([]string{"  ip address: unassigned"}); got != "" {
		t.Errorf("parseIPv4Address(unassigned) = %q, want empty", got)
	}

	v6 := cliscrape.SplitLines(`Interface Ve 10 is up, line protocol is up
  IPv6 is enabled, link-local address is fe80::224:38ff:fe89:7e00 [Preferred]
  Global unicast address(es):
    2001:db8:10::1 [Preferred],  subnet is 2001:db8:10::/64
`)
	got, err := parseIPv6Address(v6)
	if err != nil || got != "2001:db8:10::1/64" {
		t.Errorf("parseIPv6Address() = %q, %v", got, err)
	}

	got, err = parseIPv6Address([]string{"Interface Ve 10 is up", "IPv6 is disabled"})
	if err != nil || got != "" {
		t.Errorf("parseIPv6Address(disabled) = %q, %v, want empty", got, err)
	}

	_, err = parseIPv6Address([]string{"IPv6 is enabled, link-local address is fe80::1"})
	if !errors.Is(err, entities.ErrFieldNotFound) {
		t.Errorf("parseIPv6Address(no global) error = %v, want ErrFieldNotFound", err)
	}
}

func TestParseMTU(t *testing.T) {
	got, err := parseMTU([]string{"  MTU 1548 bytes, encapsulation ethernet"})
	if err != nil || got != 1548 {
		t.Errorf("parseMTU() = %d, %v, want 1548", got, err)
	}
	if _, err := parseMTU([]string{"nothing"}); !errors.Is(err, entities.ErrFieldNotFound) {
		t.Errorf("parseMTU() error = %v, want ErrFieldNotFound", err)
	}
}

func TestParseVeOutputs(t *testing.T) {
	running := []string{"interface ve 10", "interface ethernet 1/1", "interface ve 20"}
	if diff := cmp.Diff([]string{"10", "20"}, parseRunningVes(running)); diff != "" {
		t.Errorf("parseRunningVes() mismatch (-want +got):\n%s", diff)
	}

	states := parseIPInterfaceVes([]string{
		"ve 10      10.0.0.1        YES  NVRAM  up        up        default-vrf",
		"eth 1/1    unassigned      NO   unset  down      down      default-vrf",
	})
	if states["10"] != [2]string{"up", "up"} || len(states) != 1 {
		t.Errorf("parseIPInterfaceVes() = %v", states)
	}

	ve, ok := parseRouterVe([]string{"  Ve20 is up, line protocol is up"})
	if !ok || ve != 20 {
		t.Errorf("parseRouterVe() = %d, %v, want 20", ve, ok)
	}
	if _, ok := parseRouterVe([]string{"No router interface"}); ok {
		t.Error("parseRouterVe() matched without a ve")
	}
}

func TestParseAddressFamilies(t *testing.T) {
	lines := []string{"VRF red, default RD 100:1", "  Address Family IPv4", "  Address Family IPv6"}
	got := parseAddressFamilies(lines)
	if !got.IPv4 || !got.IPv6 {
		t.Errorf("parseAddressFamilies() = %+v", got)
	}
	if got := parseAddressFamilies([]string{"Address Family IPv4"}); got.IPv6 {
		t.Errorf("parseAddressFamilies(v4 only) = %+v", got)
	}
}

func TestInterfaceVRF(t *testing.T) {
	if got := parseInterfaceVRF([]string{"Port belongs to VRF: red"}); got != "red" {
		t.Errorf("parseInterfaceVRF() = %q", got)
	}
	if got := parseInterfaceVRF([]string{"no vrf"}); got != "" {
		t.Errorf("parseInterfaceVRF() = %q, want empty", got)
	}
}

func TestIsMLXVersion(t *testing.T) {
	if !isMLXVersion([]string{"System: NetIron MLX (Serial #: BVP0423G00K)"}) {
		t.Error("isMLXVersion() = false for NetIron banner")
	}
	if isMLXVersion([]string{"Cisco IOS Software, C2960"}) {
		t.Error("isMLXVersion() = true for IOS banner")
	}
}
