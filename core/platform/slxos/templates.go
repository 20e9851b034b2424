package slxos

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const (
	nsInterface = "urn:brocade.com:mgmt:brocade-interface"
	nsCommonDef = "urn:brocade.com:mgmt:brocade-common-def"
	nsIPConfig  = "urn:brocade.com:mgmt:brocade-ip-config"
	nsIPv6      = "urn:brocade.com:mgmt:brocade-ipv6-config"
	nsTunnels   = "urn:brocade.com:mgmt:brocade-tunnels"
	nsBGP       = "urn:brocade.com:mgmt:brocade-bgp"
	nsNetconf   = "urn:ietf:params:xml:ns:netconf:base:1.0"
)

// ifaceRef locates one interface in the configuration tree. Ve and
// loopback interfaces live under routing-system.
type ifaceRef struct {
	Routing bool
	Tag     string
	KeyTag  string
	Name    string
}

func refFor(key entities.InterfaceKey) ifaceRef {
	switch key.Type {
	case entities.InterfaceVe:
		return ifaceRef{Routing: true, Tag: "ve", KeyTag: "name", Name: key.Name}
	case entities.InterfaceLoopback:
		return ifaceRef{Routing: true, Tag: "loopback", KeyTag: "id", Name: key.Name}
	case entities.InterfacePortChannel:
		return ifaceRef{Tag: "port-channel", KeyTag: "name", Name: key.Name}
	}
	return ifaceRef{Tag: "ethernet", KeyTag: "name", Name: key.Name}
}

func escape(s string) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(s)); err != nil {
		return "", err
	}
	return b.String(), nil
}

func deleteAttr(del bool) string {
	if del {
		return ` xc:operation="delete"`
	}
	return ""
}

var templates = template.Must(template.New("slxos").Funcs(template.FuncMap{
	"xml": escape,
	"del": deleteAttr,
}).Parse(`
{{define "open"}}{{if .Iface.Routing}}<routing-system xmlns="` + nsCommonDef + `">{{end}}<interface xmlns="` + nsInterface + `"><{{.Iface.Tag}}><{{.Iface.KeyTag}}>{{.Iface.Name}}</{{.Iface.KeyTag}}>{{end}}
{{define "close"}}</{{.Iface.Tag}}></interface>{{if .Iface.Routing}}</routing-system>{{end}}{{end}}

{{define "interface_get"}}{{template "open" .}}{{template "close" .}}{{end}}

{{define "admin_state"}}<config xmlns:xc="` + nsNetconf + `">{{template "open" .}}<shutdown{{del .Enabled}}/>{{template "close" .}}</config>{{end}}

{{define "description"}}<config>{{template "open" .}}<description>{{xml .Description}}</description>{{template "close" .}}</config>{{end}}

{{define "vlan_create"}}<config><interface-vlan xmlns="` + nsInterface + `">{{range .VLANs}}<vlan><name>{{.}}</name>{{if $.Description}}<description>{{xml $.Description}}</description>{{end}}</vlan>{{end}}</interface-vlan></config>{{end}}

{{define "access_vlan"}}<config xmlns:xc="` + nsNetconf + `">{{template "open" .}}<switchport><access><vlan><accessvlan{{del .Delete}}>{{.VLAN}}</accessvlan></vlan></access></switchport>{{template "close" .}}</config>{{end}}

{{define "port_channel_create"}}<config xmlns:xc="` + nsNetconf + `"><interface xmlns="` + nsInterface + `"><port-channel><name>{{.Number}}</name><shutdown xc:operation="delete"/></port-channel>{{range .Ports}}<ethernet><name>{{.}}</name><channel-group><port-int>{{$.Number}}</port-int><mode>{{$.LACPMode}}</mode><type>standard</type></channel-group><shutdown xc:operation="delete"/></ethernet>{{end}}</interface></config>{{end}}

{{define "port_channel_delete"}}<config xmlns:xc="` + nsNetconf + `"><interface xmlns="` + nsInterface + `"><port-channel xc:operation="delete"><name>{{.Number}}</name></port-channel></interface></config>{{end}}

{{define "ipv4_address"}}<config xmlns:xc="` + nsNetconf + `">{{template "open" .}}<ip><ip-config xmlns="` + nsIPConfig + `"><address{{del .Delete}}><address>{{.Address}}</address></address></ip-config></ip>{{template "close" .}}</config>{{end}}

{{define "ipv6_address"}}<config xmlns:xc="` + nsNetconf + `">{{template "open" .}}<ipv6><ipv6-config xmlns="` + nsIPv6 + `"><address><ipv6-address{{del .Delete}}><address>{{.Address}}</address></ipv6-address></address></ipv6-config></ipv6>{{template "close" .}}</config>{{end}}

{{define "interface_vrf"}}<config xmlns:xc="` + nsNetconf + `">{{template "open" .}}<vrf xmlns="` + nsIPConfig + `"><forwarding{{del .Delete}}>{{xml .VRF}}</forwarding></vrf>{{template "close" .}}</config>{{end}}

{{define "overlay_gateway_create"}}<config><overlay-gateway xmlns="` + nsTunnels + `"><name>{{xml .Name}}</name><gw-type>{{.Type}}</gw-type><ip><interface><loopback><loopback-id>{{.LoopbackID}}</loopback-id></loopback></interface></ip>{{if .VNIAuto}}<map><vlan><vni><auto/></vni></vlan></map>{{end}}<activate/></overlay-gateway></config>{{end}}

{{define "overlay_gateway_get"}}<overlay-gateway xmlns="` + nsTunnels + `"></overlay-gateway>{{end}}

{{define "evpn_instance_create"}}<config><routing-system xmlns="` + nsCommonDef + `"><evpn-config xmlns="` + nsBGP + `"><evpn><evpn-instance><instance-name>{{xml .Name}}</instance-name><duplicate-mac-timer><duplicate-mac-timer-value>{{.DuplicateMACTimer}}</duplicate-mac-timer-value><max-count>{{.MaxCount}}</max-count></duplicate-mac-timer></evpn-instance></evpn></evpn-config></routing-system></config>{{end}}

{{define "bgp_open"}}<routing-system xmlns="` + nsCommonDef + `"><router><router-bgp xmlns="` + nsBGP + `">{{end}}
{{define "bgp_close"}}</router-bgp></router></routing-system>{{end}}

{{define "bgp_get"}}{{template "bgp_open"}}{{template "bgp_close"}}{{end}}

{{define "bgp_remove"}}<config xmlns:xc="` + nsNetconf + `"><routing-system xmlns="` + nsCommonDef + `"><router><router-bgp xmlns="` + nsBGP + `" xc:operation="delete"/></router></routing-system></config>{{end}}

{{define "bgp_local_asn"}}<config>{{template "bgp_open"}}<router-bgp-attributes><local-as>{{.ASN}}</local-as></router-bgp-attributes>{{template "bgp_close"}}</config>{{end}}

{{define "bgp_neighbor"}}<config xmlns:xc="` + nsNetconf + `">{{template "bgp_open"}}<router-bgp-attributes><neighbor>{{if eq .AFI "ipv6"}}<neighbor-ipv6-addr{{del .Delete}}><router-bgp-neighbor-ipv6-address>{{.Address}}</router-bgp-neighbor-ipv6-address>{{if not .Delete}}<remote-as>{{.RemoteAS}}</remote-as>{{end}}</neighbor-ipv6-addr>{{else}}<neighbor-addr{{del .Delete}}><router-bgp-neighbor-address>{{.Address}}</router-bgp-neighbor-address>{{if not .Delete}}<remote-as>{{.RemoteAS}}</remote-as>{{end}}</neighbor-addr>{{end}}</neighbor></router-bgp-attributes>{{if not .Delete}}<address-family><{{.AFI}}><{{.AFI}}-unicast><default-vrf><neighbor><af-{{.AFI}}-neighbor-address><af-{{.AFI}}-neighbor-address>{{.Address}}</af-{{.AFI}}-neighbor-address><activate/></af-{{.AFI}}-neighbor-address></neighbor></default-vrf></{{.AFI}}-unicast></{{.AFI}}></address-family>{{end}}{{template "bgp_close"}}</config>{{end}}

{{define "bgp_max_paths"}}<config xmlns:xc="` + nsNetconf + `">{{template "bgp_open"}}<address-family><{{.AFI}}><{{.AFI}}-unicast><default-vrf><af-common-cmds-holder><maximum-paths{{del .Delete}}>{{if not .Delete}}<load-sharing-value>{{.Paths}}</load-sharing-value>{{end}}</maximum-paths></af-common-cmds-holder></default-vrf></{{.AFI}}-unicast></{{.AFI}}></address-family>{{template "bgp_close"}}</config>{{end}}

{{define "evpn_instance_get"}}<routing-system xmlns="` + nsCommonDef + `"><evpn-config xmlns="` + nsBGP + `"><evpn><evpn-instance></evpn-instance></evpn></evpn-config></routing-system>{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
