package oidindex

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/carlosrabelo/switchkit/core/domain/entities"
)

func TestEncode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Index
		wantStr string
	}{
		{name: "lag name", input: "po50", want: Index{4, 112, 111, 53, 48}, wantStr: ".4.112.111.53.48"},
		{name: "single char", input: "a", want: Index{1, 97}, wantStr: ".1.97"},
		{name: "with space", input: "a b", want: Index{3, 97, 32, 98}, wantStr: ".3.97.32.98"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.input)
			if err != nil {
				t.Fatalf("Encode(%q) unexpected error: %v", tt.input, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Encode(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
			if got.String() != tt.wantStr {
				t.Errorf("Encode(%q).String() = %q, want %q", tt.input, got.String(), tt.wantStr)
			}
		})
	}
}

func TestEncodeInvalidLength(t *testing.T) {
	for _, input := range []string{"", strings.Repeat("x", 65)} {
		if _, err := Encode(input); !errors.Is(err, entities.ErrInvalidLength) {
			t.Errorf("Encode(len=%d) error = %v, want ErrInvalidLength", len(input), err)
		}
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for n := 1; n <= 64; n++ {
		var b strings.Builder
		for i := 0; i < n; i++ {
			b.WriteByte(byte(33 + (i*7)%94))
		}
		name := b.String()
		idx, err := Encode(name)
		if err != nil {
			t.Fatalf("Encode(len=%d) unexpected error: %v", n, err)
		}
		if len(idx) != n+1 || idx[0] != uint32(n) {
			t.Fatalf("Encode(len=%d) = %v, want length prefix %d", n, idx, n)
		}
		got, err := DecodeName(idx)
		if err != nil {
			t.Fatalf("DecodeName(%v) unexpected error: %v", idx, err)
		}
		if got != name {
			t.Errorf("DecodeName(Encode(%q)) = %q", name, got)
		}
	}
}

func TestDecodeNameMalformed(t *testing.T) {
	tests := []struct {
		name string
		idx  Index
	}{
		{"empty", Index{}},
		{"prefix too long", Index{5, 112, 111}},
		{"prefix too short", Index{1, 112, 111}},
		{"element above byte", Index{1, 300}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeName(tt.idx); !errors.Is(err, entities.ErrMalformedPayload) {
				t.Errorf("DecodeName(%v) error = %v, want ErrMalformedPayload", tt.idx, err)
			}
		})
	}
}

func TestParseIndexAndRowSuffix(t *testing.T) {
	base := "1.3.6.1.4.1.1991.1.1.3.33.1.1.1.12"
	suffix, ok := RowSuffix(".1.3.6.1.4.1.1991.1.1.3.33.1.1.1.12.4.112.111.53.48", base)
	if !ok {
		t.Fatal("RowSuffix() did not match base")
	}
	idx, err := ParseIndex(suffix)
	if err != nil {
		t.Fatalf("ParseIndex(%q) unexpected error: %v", suffix, err)
	}
	name, err := DecodeName(idx)
	if err != nil || name != "po50" {
		t.Errorf("DecodeName(ParseIndex(%q)) = %q, %v, want po50", suffix, name, err)
	}

	if _, ok := RowSuffix(".1.3.6.1.4.1.1991.1.1.3.33.1.1.1.120.1", base); ok {
		t.Error("RowSuffix() matched a sibling column")
	}
	if _, err := ParseIndex(".4.x"); !errors.Is(err, entities.ErrMalformedPayload) {
		t.Errorf("ParseIndex(.4.x) error = %v, want ErrMalformedPayload", err)
	}
}

func TestAppend(t *testing.T) {
	idx := Index{4, 112, 111, 53, 48}
	want := "1.3.6.1.4.1.1991.1.1.3.33.1.1.1.3.4.112.111.53.48"
	for _, base := range []string{"1.3.6.1.4.1.1991.1.1.3.33.1.1.1.3", "1.3.6.1.4.1.1991.1.1.3.33.1.1.1.3."} {
		if got := idx.Append(base); got != want {
			t.Errorf("Append(%q) = %q, want %q", base, got, want)
		}
	}
}

func TestDecodeMemberList(t *testing.T) {
	tests := []struct {
		name    string
		raw     []byte
		want    []uint32
		wantErr bool
	}{
		{name: "empty", raw: []byte{}, want: []uint32{}},
		{name: "two members", raw: []byte{0, 0, 0, 65, 0, 0, 0, 66}, want: []uint32{65, 66}},
		{name: "large ifindex", raw: []byte{0x08, 0x00, 0x00, 0x01}, want: []uint32{134217729}},
		{name: "order preserved", raw: []byte{0, 0, 0, 9, 0, 0, 0, 3, 0, 0, 0, 7}, want: []uint32{9, 3, 7}},
		{name: "short by one", raw: []byte{0, 0, 0, 1, 0, 0, 0}, wantErr: true},
		{name: "single byte", raw: []byte{1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMemberList(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, entities.ErrMalformedPayload) {
					t.Errorf("DecodeMemberList(%v) error = %v, want ErrMalformedPayload", tt.raw, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeMemberList(%v) unexpected error: %v", tt.raw, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("DecodeMemberList(%v) mismatch (-want +got):\n%s", tt.raw, diff)
			}
		})
	}
}

func TestEncodeMemberList(t *testing.T) {
	in := []uint32{65, 66, 134217729}
	got, err := DecodeMemberList(EncodeMemberList(in))
	if err != nil {
		t.Fatalf("DecodeMemberList() unexpected error: %v", err)
	}
	if diff := cmp.Diff(in, got); diff != "" {
		t.Errorf("member list mismatch (-want +got):\n%s", diff)
	}
}
