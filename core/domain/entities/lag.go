package entities

import "fmt"

// AggregationMode is the LAG type reported by the device.
type AggregationMode string

const (
	ModeStatic  AggregationMode = "static"
	ModeDynamic AggregationMode = "dynamic"
)

// ParseAggregationMode accepts "static" or "dynamic".
func ParseAggregationMode(s string) (AggregationMode, error) {
	switch AggregationMode(s) {
	case ModeStatic, ModeDynamic:
		return AggregationMode(s), nil
	}
	return "", fmt.Errorf("aggregation mode %q: %w", s, ErrMalformedPayload)
}

// LagSummary is one row of the device's LAG summary table.
type LagSummary struct {
	Name        string
	Mode        AggregationMode
	Deployed    bool
	TrunkID     string
	PrimaryPort string
}

// LacpAggregate holds the dot3adAgg actor and partner attributes of a LAG.
// Every field is empty for static or undeployed LAGs.
type LacpAggregate struct {
	SystemPriority      string `json:"system_priority"`
	ActorSystemID       string `json:"actor_system_id"`
	PartnerOperPriority string `json:"partner_oper_priority"`
	PartnerSystemID     string `json:"partner_system_id"`
	AdminKey            string `json:"admin_key"`
	OperKey             string `json:"oper_key"`
	PartnerOperKey      string `json:"partner_oper_key"`
}

// LacpMemberStatus is the LACP state of one member port.
type LacpMemberStatus struct {
	Port                string
	ActorOperKey        string
	PartnerOperKey      string
	ActorActivity       bool
	ActorAggregation    bool
	ActorSync           bool
	ActorCollecting     bool
	ActorDistributing   bool
	PartnerActivity     bool
	PartnerAggregation  bool
	PartnerSync         bool
	PartnerCollecting   bool
	PartnerDistributing bool
	RxCount             uint64
	TxCount             uint64
}

// Aggregating reports whether both ends agree to aggregate the link.
func (s LacpMemberStatus) Aggregating() bool {
	return s.ActorAggregation && s.PartnerAggregation
}

// InSync reports whether the link is aggregating and both ends collect and distribute.
func (s LacpMemberStatus) InSync() bool {
	return s.Aggregating() &&
		s.ActorCollecting && s.ActorDistributing &&
		s.PartnerCollecting && s.PartnerDistributing
}

// LagMember is one member port of a LAG.
type LagMember struct {
	Interface InterfaceKey `json:"interface"`
	ActorPort uint32       `json:"actor_port"`
	Sync      bool         `json:"sync"`
}

// LagRecord is the composed view of one port-channel.
type LagRecord struct {
	Name           string          `json:"name"`
	Mode           AggregationMode `json:"aggregator_mode"`
	Deployed       bool            `json:"deployed"`
	PrimaryPort    string          `json:"primary_port"`
	AggregateID    int             `json:"aggregate_id"`
	IfIndex        uint32          `json:"ifindex"`
	AggregatorType string          `json:"aggregator_type"`
	IsVLAG         bool            `json:"is_vlag"`
	Members        []LagMember     `json:"members"`
	LACP           LacpAggregate   `json:"lacp"`
	RxLinkCount    int             `json:"rx_link_count"`
	TxLinkCount    int             `json:"tx_link_count"`
	IndividualAgg  int             `json:"individual_agg"`
	ReadyAgg       int             `json:"ready_agg"`
}

// MemberPorts returns the member interfaces in device order.
func (r LagRecord) MemberPorts() []InterfaceKey {
	out := make([]InterfaceKey, len(r.Members))
	for i, m := range r.Members {
		out[i] = m.Interface
	}
	return out
}
