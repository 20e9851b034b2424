package entities

import (
	"fmt"
	"strings"
)

// InterfaceType enumerates the interface families a driver can address.
type InterfaceType string

const (
	InterfaceEthernet    InterfaceType = "ethernet"
	InterfacePortChannel InterfaceType = "port_channel"
	InterfaceLoopback    InterfaceType = "loopback"
	InterfaceVe          InterfaceType = "ve"
)

// InterfaceTypes lists every known interface type.
var InterfaceTypes = []InterfaceType{
	InterfaceEthernet,
	InterfacePortChannel,
	InterfaceLoopback,
	InterfaceVe,
}

// ParseInterfaceType resolves a canonical type name, case-insensitively.
func ParseInterfaceType(s string) (InterfaceType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "-", "_")
	for _, t := range InterfaceTypes {
		if string(t) == normalized {
			return t, nil
		}
	}
	return "", InvalidParameter("interface type %q, must be one of %v", s, InterfaceTypes)
}

// Keyword is the CLI keyword used by device configuration commands.
func (t InterfaceType) Keyword() string {
	if t == InterfacePortChannel {
		return "port-channel"
	}
	return string(t)
}

// InterfaceKey identifies an interface by type and name, e.g. ethernet 2/1.
type InterfaceKey struct {
	Type InterfaceType `json:"type"`
	Name string        `json:"name"`
}

// String renders the key the way device CLIs expect it.
func (k InterfaceKey) String() string {
	return k.Type.Keyword() + " " + k.Name
}

// Validate checks the key carries a known type and a name.
func (k InterfaceKey) Validate() error {
	if _, err := ParseInterfaceType(string(k.Type)); err != nil {
		return err
	}
	if strings.TrimSpace(k.Name) == "" {
		return InvalidParameter("interface name is required")
	}
	return nil
}

// longest prefixes first so "ethernet" wins over "e"
var interfacePrefixes = []struct {
	prefix string
	typ    InterfaceType
}{
	{"port-channel", InterfacePortChannel},
	{"port_channel", InterfacePortChannel},
	{"loopback", InterfaceLoopback},
	{"ethernet", InterfaceEthernet},
	{"lb", InterfaceLoopback},
	{"ve", InterfaceVe},
	{"eth", InterfaceEthernet},
	{"e", InterfaceEthernet},
}

// ParseInterfaceKey recovers a key from device interface names such as
// "ethernet2/1", "ethernet 2/1", "ve 10" or "loopback1".
func ParseInterfaceKey(s string) (InterfaceKey, error) {
	trimmed := strings.TrimSpace(s)
	lower := strings.ToLower(trimmed)
	for _, p := range interfacePrefixes {
		if !strings.HasPrefix(lower, p.prefix) {
			continue
		}
		name := strings.TrimSpace(trimmed[len(p.prefix):])
		if name == "" || !startsWithDigit(name) {
			continue
		}
		return InterfaceKey{Type: p.typ, Name: name}, nil
	}
	return InterfaceKey{}, fmt.Errorf("interface %q: %w", s, ErrNotFound)
}

func startsWithDigit(s string) bool {
	return s[0] >= '0' && s[0] <= '9'
}
