package slxos

import (
	"encoding/xml"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

// node is a generic element of a get-config reply.
type node struct {
	XMLName xml.Name
	Content string `xml:",chardata"`
	Nodes   []node `xml:",any"`
}

func parseReply(raw string) (*node, error) {
	var root node
	if err := xml.Unmarshal([]byte(raw), &root); err != nil {
		return nil, fmt.Errorf("decode reply: %v: %w", err, entities.ErrMalformedPayload)
	}
	return &root, nil
}

// find returns the first descendant with the given local name, depth first.
func (n *node) find(name string) *node {
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.XMLName.Local == name {
			return c
		}
		if found := c.find(name); found != nil {
			return found
		}
	}
	return nil
}

// path follows a chain of descendant lookups.
func (n *node) path(names ...string) *node {
	cur := n
	for _, name := range names {
		if cur = cur.find(name); cur == nil {
			return nil
		}
	}
	return cur
}

func (n *node) text(names ...string) string {
	if found := n.path(names...); found != nil {
		return strings.TrimSpace(found.Content)
	}
	return ""
}

func (n *node) has(names ...string) bool {
	return n.path(names...) != nil
}

// findInterface returns the element of the interface named by ref.
func (n *node) findInterface(ref ifaceRef) *node {
	var walk func(*node) *node
	walk = func(cur *node) *node {
		for i := range cur.Nodes {
			c := &cur.Nodes[i]
			if c.XMLName.Local == ref.Tag && c.text(ref.KeyTag) == ref.Name {
				return c
			}
			if found := walk(c); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(n)
}

func interfaceNode(raw string, key entities.InterfaceKey) (*node, error) {
	root, err := parseReply(raw)
	if err != nil {
		return nil, err
	}
	iface := root.findInterface(refFor(key))
	if iface == nil {
		return nil, fmt.Errorf("interface %s: %w", key, entities.ErrNotFound)
	}
	return iface, nil
}

func parseOverlayGateway(raw string) (entities.OverlayGateway, error) {
	root, err := parseReply(raw)
	if err != nil {
		return entities.OverlayGateway{}, err
	}
	gw := root.find("overlay-gateway")
	if gw == nil {
		return entities.OverlayGateway{}, fmt.Errorf("overlay gateway: %w", entities.ErrNotFound)
	}
	out := entities.OverlayGateway{
		Name:     gw.text("name"),
		Type:     gw.text("gw-type"),
		Activate: gw.has("activate"),
		VNIAuto:  gw.has("auto"),
	}
	if v := gw.text("loopback-id"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return entities.OverlayGateway{}, fmt.Errorf("loopback-id %q: %w", v, entities.ErrMalformedPayload)
		}
		out.LoopbackID = id
	}
	return out, nil
}

func parseEVPNInstance(raw string) (entities.EVPNInstance, error) {
	root, err := parseReply(raw)
	if err != nil {
		return entities.EVPNInstance{}, err
	}
	evi := root.find("evpn-instance")
	if evi == nil || evi.text("instance-name") == "" {
		return entities.EVPNInstance{}, fmt.Errorf("evpn instance: %w", entities.ErrNotFound)
	}
	out := entities.EVPNInstance{Name: evi.text("instance-name")}
	for _, f := range []struct {
		dst  *int
		name string
	}{
		{&out.DuplicateMACTimer, "duplicate-mac-timer-value"},
		{&out.MaxCount, "max-count"},
	} {
		v := evi.text(f.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return entities.EVPNInstance{}, fmt.Errorf("%s %q: %w", f.name, v, entities.ErrMalformedPayload)
		}
		*f.dst = n
	}
	return out, nil
}

// all returns every descendant with the given local name without
// descending into matches.
func (n *node) all(name string) []*node {
	var out []*node
	for i := range n.Nodes {
		c := &n.Nodes[i]
		if c.XMLName.Local == name {
			out = append(out, c)
			continue
		}
		out = append(out, c.all(name)...)
	}
	return out
}

func bgpNode(raw string) (*node, error) {
	root, err := parseReply(raw)
	if err != nil {
		return nil, err
	}
	rb := root.find("router-bgp")
	if rb == nil {
		return nil, fmt.Errorf("bgp: %w", entities.ErrNotFound)
	}
	return rb, nil
}

func parseASN(field, v string) (uint32, error) {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", field, v, entities.ErrMalformedPayload)
	}
	return uint32(n), nil
}

func parseBGPLocalASN(raw string) (uint32, error) {
	rb, err := bgpNode(raw)
	if err != nil {
		return 0, err
	}
	v := rb.text("router-bgp-attributes", "local-as")
	if v == "" {
		return 0, fmt.Errorf("bgp local-as: %w", entities.ErrNotFound)
	}
	return parseASN("local-as", v)
}

// parseBGPNeighbors lists IPv4 then IPv6 neighbors. A reply without a
// BGP process yields no neighbors.
func parseBGPNeighbors(raw string) ([]entities.BGPNeighbor, error) {
	rb, err := bgpNode(raw)
	if errors.Is(err, entities.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	attrs := rb.find("router-bgp-attributes")
	if attrs == nil {
		return nil, nil
	}
	var out []entities.BGPNeighbor
	for _, f := range []struct{ entry, key string }{
		{"neighbor-addr", "router-bgp-neighbor-address"},
		{"neighbor-ipv6-addr", "router-bgp-neighbor-ipv6-address"},
	} {
		for _, n := range attrs.all(f.entry) {
			nb := entities.BGPNeighbor{Address: n.text(f.key)}
			if v := n.text("remote-as"); v != "" {
				asn, err := parseASN("remote-as", v)
				if err != nil {
					return nil, err
				}
				nb.RemoteAS = asn
			}
			out = append(out, nb)
		}
	}
	return out, nil
}

func parseBGPMaxPaths(raw, afi string) (int, error) {
	rb, err := bgpNode(raw)
	if err != nil {
		return 0, err
	}
	v := rb.text("address-family", afi, "maximum-paths", "load-sharing-value")
	if v == "" {
		return 0, fmt.Errorf("bgp %s maximum-paths: %w", afi, entities.ErrNotFound)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("load-sharing-value %q: %w", v, entities.ErrMalformedPayload)
	}
	return n, nil
}

func isSLXVersion(lines []string) bool {
	for _, line := range lines {
		if strings.Contains(line, "SLX") {
			return true
		}
	}
	return false
}
