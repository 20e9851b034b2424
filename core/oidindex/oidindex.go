// Package oidindex converts between interface or LAG names and the SNMP
// table index suffixes the device uses to key rows by name, and decodes the
// packed member-port lists stored in LAG tables.
package oidindex

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

const (
	minNameLength = 1
	maxNameLength = 64
	ifIndexSize   = 4
)

// Index is an SNMP table index suffix: a length prefix followed by one
// element per byte of the name.
type Index []uint32

// Encode returns the index suffix for name: [len(name), name[0], name[1], ...].
func Encode(name string) (Index, error) {
	if len(name) < minNameLength || len(name) > maxNameLength {
		return nil, fmt.Errorf("name %q is %d bytes, must be %d to %d: %w",
			name, len(name), minNameLength, maxNameLength, entities.ErrInvalidLength)
	}
	idx := make(Index, 0, len(name)+1)
	idx = append(idx, uint32(len(name)))
	for i := 0; i < len(name); i++ {
		idx = append(idx, uint32(name[i]))
	}
	return idx, nil
}

// String renders the suffix in dotted form, e.g. ".4.112.111.53.48".
func (idx Index) String() string {
	var b strings.Builder
	for _, v := range idx {
		b.WriteByte('.')
		b.WriteString(strconv.FormatUint(uint64(v), 10))
	}
	return b.String()
}

// Append joins the suffix to a base OID.
func (idx Index) Append(base string) string {
	return strings.TrimSuffix(base, ".") + idx.String()
}

// DecodeName inverts Encode.
func DecodeName(idx Index) (string, error) {
	if len(idx) == 0 {
		return "", fmt.Errorf("empty index: %w", entities.ErrMalformedPayload)
	}
	n := int(idx[0])
	if n != len(idx)-1 {
		return "", fmt.Errorf("index length prefix %d does not match %d elements: %w",
			n, len(idx)-1, entities.ErrMalformedPayload)
	}
	buf := make([]byte, 0, n)
	for _, v := range idx[1:] {
		if v > 0xff {
			return "", fmt.Errorf("index element %d is not a byte: %w", v, entities.ErrMalformedPayload)
		}
		buf = append(buf, byte(v))
	}
	return string(buf), nil
}

// ParseIndex parses a dotted suffix such as ".4.112.111.53.48".
func ParseIndex(s string) (Index, error) {
	s = strings.Trim(s, ".")
	if s == "" {
		return Index{}, nil
	}
	parts := strings.Split(s, ".")
	idx := make(Index, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseUint(p, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("index element %q: %w", p, entities.ErrMalformedPayload)
		}
		idx = append(idx, uint32(v))
	}
	return idx, nil
}

// RowSuffix returns the part of oid that follows base, e.g. the row index of
// a walked table cell. ok is false when oid is not under base.
func RowSuffix(oid, base string) (string, bool) {
	oid = "." + strings.TrimPrefix(oid, ".")
	base = "." + strings.Trim(base, ".")
	if !strings.HasPrefix(oid, base+".") {
		return "", false
	}
	return oid[len(base):], true
}

// DecodeMemberList splits a packed member list into ifIndex values, one per
// big-endian 4 byte group, preserving order.
func DecodeMemberList(raw []byte) ([]uint32, error) {
	if len(raw)%ifIndexSize != 0 {
		return nil, fmt.Errorf("member list of %d bytes is not a multiple of %d: %w",
			len(raw), ifIndexSize, entities.ErrMalformedPayload)
	}
	out := make([]uint32, 0, len(raw)/ifIndexSize)
	for i := 0; i < len(raw); i += ifIndexSize {
		out = append(out, binary.BigEndian.Uint32(raw[i:i+ifIndexSize]))
	}
	return out, nil
}

// EncodeMemberList packs ifIndex values the way DecodeMemberList expects them.
func EncodeMemberList(ifIndexes []uint32) []byte {
	out := make([]byte, 0, len(ifIndexes)*ifIndexSize)
	for _, v := range ifIndexes {
		out = binary.BigEndian.AppendUint32(out, v)
	}
	return out
}
