package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/gosnmp/gosnmp"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
	"github.com/carlosrabelo/switchkit/core/domain/ports"
	"github.com/carlosrabelo/switchkit/core/oidindex"
	"github.com/carlosrabelo/switchkit/core/platform/mib"
	"github.com/carlosrabelo/switchkit/core/platform/mlx"
)

func mustOID(tbl mib.Table, name string) string {
	oid, err := tbl.OID(name)
	if err != nil {
		panic(err)
	}
	return oid
}

type lagRow struct {
	ifIndex uint32
	id      int
	members []uint32
}

// MockPortChannelSource serves LAG data keyed by the encoded LAG name.
type MockPortChannelSource struct {
	summaries []entities.LagSummary
	rows      map[string]lagRow
	lacp      entities.LacpAggregate
	status    map[string]entities.LacpMemberStatus
	lacpCalls int
	rawList   []byte
}

func (m *MockPortChannelSource) row(index []uint32) (lagRow, error) {
	name, err := oidindex.DecodeName(index)
	if err != nil {
		return lagRow{}, err
	}
	r, ok := m.rows[name]
	if !ok {
		return lagRow{}, entities.ErrNotFound
	}
	return r, nil
}

func (m *MockPortChannelSource) PortChannelSummaries(context.Context, ports.Callback) ([]entities.LagSummary, error) {
	return m.summaries, nil
}

func (m *MockPortChannelSource) PortChannelIfIndex(_ context.Context, _ ports.Callback, index []uint32) (uint32, error) {
	r, err := m.row(index)
	return r.ifIndex, err
}

func (m *MockPortChannelSource) PortChannelID(_ context.Context, _ ports.Callback, index []uint32) (int, error) {
	r, err := m.row(index)
	return r.id, err
}

func (m *MockPortChannelSource) PortChannelMemberList(_ context.Context, _ ports.Callback, index []uint32) ([]byte, error) {
	if m.rawList != nil {
		return m.rawList, nil
	}
	r, err := m.row(index)
	if err != nil {
		return nil, err
	}
	return oidindex.EncodeMemberList(r.members), nil
}

func (m *MockPortChannelSource) AggregateLACP(context.Context, ports.Callback, uint32) (entities.LacpAggregate, error) {
	m.lacpCalls++
	return m.lacp, nil
}

func (m *MockPortChannelSource) LACPMembers(context.Context, ports.Callback, string) (map[string]entities.LacpMemberStatus, error) {
	m.lacpCalls++
	return m.status, nil
}

// MockInterfaceIndex resolves ifIndex values from a fixed table.
type MockInterfaceIndex map[uint32]entities.InterfaceKey

func (m MockInterfaceIndex) InterfaceName(_ context.Context, n uint32) (entities.InterfaceKey, error) {
	key, ok := m[n]
	if !ok {
		return entities.InterfaceKey{}, fmt.Errorf("ifindex %d: %w", n, entities.ErrNotFound)
	}
	return key, nil
}

func (m MockInterfaceIndex) InterfaceIndex(_ context.Context, key entities.InterfaceKey) (uint32, error) {
	for n, k := range m {
		if k == key {
			return n, nil
		}
	}
	return 0, entities.ErrNotFound
}

func eth(name string) entities.InterfaceKey {
	return entities.InterfaceKey{Type: entities.InterfaceEthernet, Name: name}
}

var testIndex = MockInterfaceIndex{65: eth("2/1"), 66: eth("2/2"), 97: eth("3/1")}

var negotiated = entities.LacpMemberStatus{
	ActorAggregation: true, PartnerAggregation: true,
	ActorCollecting: true, ActorDistributing: true,
	PartnerCollecting: true, PartnerDistributing: true,
}

func TestListPortChannelsDynamic(t *testing.T) {
	half := negotiated
	half.PartnerDistributing = false
	half.RxCount = 10

	full := negotiated
	full.RxCount, full.TxCount = 1200, 3400

	src := &MockPortChannelSource{
		summaries: []entities.LagSummary{{Name: "po50", Mode: entities.ModeDynamic, Deployed: true, TrunkID: "1", PrimaryPort: "2/1"}},
		rows:      map[string]lagRow{"po50": {ifIndex: 134217778, id: 50, members: []uint32{65, 66}}},
		lacp: entities.LacpAggregate{
			SystemPriority: "1", ActorSystemID: "00:24:38:89:7e:00",
			PartnerOperPriority: "32768", PartnerSystemID: "00:05:33:10:20:30",
			AdminKey: "20000", OperKey: "20000", PartnerOperKey: "20001",
		},
		status: map[string]entities.LacpMemberStatus{"2/1": full, "2/2": half},
	}

	got, err := NewPortChannelService(nil, src, testIndex, nil).ListPortChannels(context.Background())
	if err != nil {
		t.Fatalf("ListPortChannels() unexpected error: %v", err)
	}
	want := []entities.LagRecord{{
		Name:           "po50",
		Mode:           entities.ModeDynamic,
		Deployed:       true,
		PrimaryPort:    "2/1",
		AggregateID:    50,
		IfIndex:        134217778,
		AggregatorType: "standard",
		Members: []entities.LagMember{
			{Interface: eth("2/1"), ActorPort: 65, Sync: true},
			{Interface: eth("2/2"), ActorPort: 66, Sync: false},
		},
		LACP:        src.lacp,
		RxLinkCount: 2,
		TxLinkCount: 1,
		ReadyAgg:    1,
	}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListPortChannels() mismatch (-want +got):\n%s", diff)
	}
}

func TestListPortChannelsSkipsLACP(t *testing.T) {
	tests := []struct {
		name    string
		summary entities.LagSummary
	}{
		{"static", entities.LagSummary{Name: "po60", Mode: entities.ModeStatic, Deployed: true, PrimaryPort: "3/1"}},
		{"dynamic undeployed", entities.LagSummary{Name: "po60", Mode: entities.ModeDynamic, Deployed: false, PrimaryPort: "3/1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &MockPortChannelSource{
				summaries: []entities.LagSummary{tt.summary},
				rows:      map[string]lagRow{"po60": {ifIndex: 134217779, id: 60, members: []uint32{97}}},
				lacp:      entities.LacpAggregate{SystemPriority: "must not be read"},
			}
			got, err := NewPortChannelService(nil, src, testIndex, nil).ListPortChannels(context.Background())
			if err != nil {
				t.Fatalf("ListPortChannels() unexpected error: %v", err)
			}
			if src.lacpCalls != 0 {
				t.Errorf("LACP queried %d times, want 0", src.lacpCalls)
			}
			if len(got) != 1 || got[0].LACP != (entities.LacpAggregate{}) {
				t.Errorf("LACP = %+v, want empty", got)
			}
			if got[0].ReadyAgg != 0 || got[0].RxLinkCount != 0 || got[0].Members[0].Sync {
				t.Errorf("record = %+v, want zero lacp counters", got[0])
			}
			if diff := cmp.Diff([]entities.InterfaceKey{eth("3/1")}, got[0].MemberPorts()); diff != "" {
				t.Errorf("MemberPorts() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListPortChannelsErrors(t *testing.T) {
	base := func() *MockPortChannelSource {
		return &MockPortChannelSource{
			summaries: []entities.LagSummary{{Name: "po50", Mode: entities.ModeStatic, Deployed: true}},
			rows:      map[string]lagRow{"po50": {ifIndex: 1, id: 50, members: []uint32{65}}},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*MockPortChannelSource)
		index   MockInterfaceIndex
		wantErr error
	}{
		{"unknown member", func(*MockPortChannelSource) {}, MockInterfaceIndex{}, entities.ErrNotFound},
		{"malformed member list", func(m *MockPortChannelSource) { m.rawList = []byte{0, 0, 1} }, testIndex, entities.ErrMalformedPayload},
		{"name too long", func(m *MockPortChannelSource) {
			m.summaries[0].Name = strings.Repeat("p", 65)
		}, testIndex, entities.ErrInvalidLength},
		{"missing row", func(m *MockPortChannelSource) { m.rows = nil }, testIndex, entities.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := base()
			tt.mutate(src)
			_, err := NewPortChannelService(nil, src, tt.index, nil).ListPortChannels(context.Background())
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ListPortChannels() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// scriptedMLX answers the requests the MLX driver issues for one LAG.
type scriptedMLX struct {
	cli map[string]string
	get map[string]gosnmp.SnmpPDU
}

func (s *scriptedMLX) Invoke(_ context.Context, handler ports.Handler, p ports.Payload) (ports.Result, error) {
	switch handler {
	case ports.HandlerCLIGet:
		out, ok := s.cli[strings.Join(p.Commands, "\n")]
		if !ok {
			return ports.Result{}, fmt.Errorf("unscripted command %q", p.Commands)
		}
		return ports.Result{Output: out}, nil
	case ports.HandlerSNMPGet:
		pdu, ok := s.get[p.OIDs[0]]
		if !ok {
			pdu = gosnmp.SnmpPDU{Name: p.OIDs[0], Type: gosnmp.NoSuchInstance}
		}
		return ports.Result{PDUs: []gosnmp.SnmpPDU{pdu}}, nil
	}
	return ports.Result{}, fmt.Errorf("unexpected handler %s", handler)
}

func TestListPortChannelsThroughMLXDriver(t *testing.T) {
	oids := mib.Default()
	po50 := oidindex.Index{4, 112, 111, 53, 48}
	po60 := oidindex.Index{4, 112, 111, 54, 48}
	intPDU := func(v int) gosnmp.SnmpPDU { return gosnmp.SnmpPDU{Type: gosnmp.Integer, Value: v} }
	strPDU := func(v []byte) gosnmp.SnmpPDU { return gosnmp.SnmpPDU{Type: gosnmp.OctetString, Value: v} }
	agg := func(name string) string {
		cell, _ := oids.Cell(name, "134217778")
		return cell
	}

	dev := &scriptedMLX{
		cli: map[string]string{
			"show lag brief": "LAG Type Deploy Trunk Primary Port List\n" +
				"po50 dynamic Y 1 2/1 e 2/1 to 2/2\n" +
				"po60 static Y 2 3/1 e 3/1\n\n",
			"show lacp lag_name po50": "2/1 ACTR 1 1 20000 Yes L Agg Syn Col Dis No No Ope\n" +
				"2/1 PRTR 1 1 20000 Yes L Agg Syn Col Dis No No Ope\n" +
				"2/2 ACTR 1 1 20000 Yes L Agg Syn Col Dis No No Ope\n" +
				"2/2 PRTR 1 1 20000 Yes L Agg Syn Col Dis No No Ope\n" +
				"2/1 0 5 0 7\n2/2 0 5 0 7\n",
		},
		get: map[string]gosnmp.SnmpPDU{
			po50.Append(mustOID(oids, mib.FdryLagIfIndex)): intPDU(134217778),
			po50.Append(mustOID(oids, mib.FdryLagID)):      intPDU(50),
			po50.Append(mustOID(oids, mib.FdryLagIfList)):  strPDU([]byte{0, 0, 0, 65, 0, 0, 0, 66}),
			po60.Append(mustOID(oids, mib.FdryLagIfIndex)): intPDU(134217779),
			po60.Append(mustOID(oids, mib.FdryLagID)):      intPDU(60),
			po60.Append(mustOID(oids, mib.FdryLagIfList)):  strPDU([]byte{0, 0, 0, 97}),

			agg(mib.Dot3adAggActorSystemPriority):   intPDU(1),
			agg(mib.Dot3adAggActorSystemID):         strPDU([]byte{0, 0x24, 0x38, 0x89, 0x7e, 0}),
			agg(mib.Dot3adAggPartnerSystemPriority): intPDU(32768),
			agg(mib.Dot3adAggPartnerSystemID):       strPDU([]byte{0, 5, 0x33, 0x10, 0x20, 0x30}),
			agg(mib.Dot3adAggActorAdminKey):         intPDU(20000),
			agg(mib.Dot3adAggActorOperKey):          intPDU(20000),
			agg(mib.Dot3adAggPartnerOperKey):        intPDU(20000),

			mustOID(oids, mib.IfName) + ".65": strPDU([]byte("ethernet2/1")),
			mustOID(oids, mib.IfName) + ".66": strPDU([]byte("ethernet2/2")),
			mustOID(oids, mib.IfName) + ".97": strPDU([]byte("ethernet3/1")),
		},
	}

	driver := mlx.New(nil, oids)
	index, err := driver.InterfaceIndex(dev)
	if err != nil {
		t.Fatalf("InterfaceIndex() unexpected error: %v", err)
	}
	got, err := NewPortChannelService(dev, driver, index, nil).ListPortChannels(context.Background())
	if err != nil {
		t.Fatalf("ListPortChannels() unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListPortChannels() returned %d records, want 2", len(got))
	}

	dyn := got[0]
	if dyn.Mode != entities.ModeDynamic || dyn.AggregateID != 50 || len(dyn.Members) != 2 {
		t.Errorf("po50 = %+v", dyn)
	}
	if dyn.LACP.ActorSystemID != "00:24:38:89:7e:00" || dyn.LACP.SystemPriority == "" || dyn.LACP.PartnerOperKey == "" {
		t.Errorf("po50 LACP = %+v, want populated", dyn.LACP)
	}
	if !dyn.Members[0].Sync || !dyn.Members[1].Sync || dyn.ReadyAgg != 1 || dyn.RxLinkCount != 2 || dyn.TxLinkCount != 2 {
		t.Errorf("po50 lacp state = %+v", dyn)
	}

	static := got[1]
	if static.Mode != entities.ModeStatic || static.LACP != (entities.LacpAggregate{}) {
		t.Errorf("po60 = %+v, want static with empty LACP", static)
	}
	if diff := cmp.Diff([]entities.InterfaceKey{eth("3/1")}, static.MemberPorts()); diff != "" {
		t.Errorf("po60 MemberPorts() mismatch (-want +got):\n%s", diff)
	}
}
