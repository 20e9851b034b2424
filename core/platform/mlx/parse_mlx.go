package mlx

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/carlosrabelo/switchkit/core/cliscrape"
	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const (
	lagBriefHeader    = "Deploy"
	lagBriefMinFields = 5

	lacpActorRow   = "ACTR"
	lacpPartnerRow = "PRTR"
	lacpStateWidth = 11
)

var (
	portNameRegex = regexp.MustCompile(`^\d+(?:/\d+)+$`)
	versionRegex  = regexp.MustCompile(`(?i)\b(NetIron|MLX)`)

	ipv4AddressPattern = cliscrape.NewPattern("ip address", `ip address:\s*(\S+)`)
	ipv6EnabledPattern = cliscrape.NewPattern("ipv6 enabled", `(IPv6 is enabled)`)
	ipv6GlobalRegex    = regexp.MustCompile(`^\s*(\S+)\s+\[Preferred\],\s+subnet is (\S+)`)
	mtuPattern         = cliscrape.NewPattern("mtu", `MTU (\d+)`)
	vrfPattern         = cliscrape.NewPattern("vrf", `Port belongs to VRF: (\S+)`)
	routerVePattern    = cliscrape.NewPattern("router interface", `Ve(\d+) is`)
	runningVePattern   = cliscrape.NewPattern("ve", `^\s*interface ve (\d+)`)
	afiPattern         = cliscrape.NewPattern("address family", `Address Family IPv(\d)`)
)

func isMLXVersion(lines []string) bool {
	for _, line := range lines {
		if versionRegex.MatchString(line) {
			return true
		}
	}
	return false
}

// parseLagBrief reads the summary table of "show lag brief".
func parseLagBrief(lines []string) ([]entities.LagSummary, error) {
	rows, err := cliscrape.HeaderTable{Header: lagBriefHeader, MinFields: lagBriefMinFields}.Parse(lines)
	if err != nil {
		return nil, err
	}
	out := make([]entities.LagSummary, 0, len(rows))
	for _, f := range rows {
		mode, err := entities.ParseAggregationMode(strings.ToLower(f[1]))
		if err != nil {
			return nil, fmt.Errorf("lag %s: %w", f[0], err)
		}
		out = append(out, entities.LagSummary{
			Name:        f[0],
			Mode:        mode,
			Deployed:    f[2] == "Y",
			TrunkID:     f[3],
			PrimaryPort: f[4],
		})
	}
	return out, nil
}

type lacpSeen struct {
	actor, partner, counters bool
}

// parseLacpMembers reads "show lacp lag_name <lag>". Each member port has an
// actor row, a partner row and a counter row keyed by its port name.
func parseLacpMembers(lines []string) (map[string]entities.LacpMemberStatus, error) {
	if err := cliscrape.CheckDeviceError(lines); err != nil {
		return nil, err
	}
	members := make(map[string]entities.LacpMemberStatus)
	seen := make(map[string]*lacpSeen)
	var order []string

	for _, line := range lines {
		f := strings.Fields(line)
		if len(f) < 2 || !portNameRegex.MatchString(f[0]) {
			continue
		}
		port := f[0]
		st, ok := members[port]
		if !ok {
			st.Port = port
			seen[port] = &lacpSeen{}
			order = append(order, port)
		}

		switch f[1] {
		case lacpActorRow, lacpPartnerRow:
			if len(f) < lacpStateWidth {
				return nil, &entities.FieldNotFoundError{Field: fmt.Sprintf("lacp %s state of %s", f[1], port)}
			}
			activity := f[5] == "Yes"
			agg := f[7] == "Agg"
			syn := f[8] == "Syn"
			col := f[9] == "Col"
			dis := f[10] == "Dis"
			if f[1] == lacpActorRow {
				st.ActorOperKey = f[4]
				st.ActorActivity, st.ActorAggregation, st.ActorSync = activity, agg, syn
				st.ActorCollecting, st.ActorDistributing = col, dis
				seen[port].actor = true
			} else {
				st.PartnerOperKey = f[4]
				st.PartnerActivity, st.PartnerAggregation, st.PartnerSync = activity, agg, syn
				st.PartnerCollecting, st.PartnerDistributing = col, dis
				seen[port].partner = true
			}
		default:
			if len(f) < 5 {
				continue
			}
			rx, errRx := strconv.ParseUint(f[2], 10, 64)
			tx, errTx := strconv.ParseUint(f[4], 10, 64)
			if errRx != nil || errTx != nil {
				continue
			}
			st.RxCount, st.TxCount = rx, tx
			seen[port].counters = true
		}
		members[port] = st
	}

	for _, port := range order {
		s := seen[port]
		switch {
		case !s.actor:
			return nil, &entities.FieldNotFoundError{Field: "lacp actor state of " + port}
		case !s.partner:
			return nil, &entities.FieldNotFoundError{Field: "lacp partner state of " + port}
		case !s.counters:
			return nil, &entities.FieldNotFoundError{Field: "lacp counters of " + port}
		}
	}
	return members, nil
}

// parseIPv4Address returns the interface's IPv4 prefix, empty when unassigned.
func parseIPv4Address(lines []string) string {
	addr, ok := ipv4AddressPattern.Find(lines)
	if !ok || addr == "unassigned" {
		return ""
	}
	return addr
}

// parseIPv6Address returns the preferred global address as addr/len, empty
// when IPv6 is not enabled on the interface.
func parseIPv6Address(lines []string) (string, error) {
	if _, ok := ipv6EnabledPattern.Find(lines); !ok {
		return "", nil
	}
	for _, line := range lines {
		m := ipv6GlobalRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		i := strings.LastIndex(m[2], "/")
		if i < 0 {
			break
		}
		return m[1] + m[2][i:], nil
	}
	return "", &entities.FieldNotFoundError{Field: "ipv6 address"}
}

func parseMTU(lines []string) (int, error) {
	v, err := mtuPattern.Extract(lines)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(v)
}

func parseInterfaceVRF(lines []string) string {
	vrf, _ := vrfPattern.Find(lines)
	return vrf
}

func parseRouterVe(lines []string) (int, bool) {
	v, ok := routerVePattern.Find(lines)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	return n, err == nil
}

func parseRunningVes(lines []string) []string {
	return runningVePattern.FindAll(lines)
}

// parseIPInterfaceVes reads the ve rows of "show ip interface" and returns
// the interface and protocol state per ve number.
func parseIPInterfaceVes(lines []string) map[string][2]string {
	out := make(map[string][2]string)
	for _, line := range lines {
		f := strings.Fields(line)
		if len(f) < 7 || !strings.EqualFold(f[0], "ve") {
			continue
		}
		out[f[1]] = [2]string{f[5], f[6]}
	}
	return out
}

func parseAddressFamilies(lines []string) entities.AddressFamilies {
	var afs entities.AddressFamilies
	for _, v := range afiPattern.FindAll(lines) {
		switch v {
		case "4":
			afs.IPv4 = true
		case "6":
			afs.IPv6 = true
		}
	}
	return afs
}
