package packet

import (
	"bytes"
	"testing"
)

func TestFixedHeaderPackUnpack(t *testing.T) {
	cases := []struct {
		name   string
		header FixedHeader
		wire   []byte
	}{
		{"connect", FixedHeader{Kind: 0x1, RemainingLength: 0}, []byte{0x10, 0x00}},
		{"publish_qos1", FixedHeader{Kind: 0x3, QoS: 1, RemainingLength: 10}, []byte{0x32, 0x0A}},
		{"publish_dup_qos2_retain", FixedHeader{Kind: 0x3, Dup: 1, QoS: 2, Retain: 1, RemainingLength: 1}, []byte{0x3D, 0x01}},
		{"subscribe", FixedHeader{Kind: 0x8, QoS: 1, RemainingLength: 20}, []byte{0x82, 0x14}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tc.header.Pack(&buf); err != nil {
				t.Fatalf("Pack: %v", err)
			}
			if !bytes.Equal(buf.Bytes(), tc.wire) {
				t.Errorf("Pack() = % X, want % X", buf.Bytes(), tc.wire)
			}

			got := &FixedHeader{}
			if err := got.Unpack(bytes.NewBuffer(tc.wire)); err != nil {
				t.Fatalf("Unpack: %v", err)
			}
			if *got != tc.header {
				t.Errorf("Unpack() = %+v, want %+v", *got, tc.header)
			}
		})
	}
}

func TestFixedHeaderReservedFlags(t *testing.T) {
	cases := []struct {
		name    string
		wire    byte
		wantErr bool
	}{
		{"connect_flags_zero", 0x10, false},
		{"connect_flags_set", 0x11, true},
		{"pubrel_required_pattern", 0x62, false},
		{"pubrel_wrong_pattern", 0x60, true},
		{"publish_qos3_reserved", 0x36, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			buf := bytes.NewBuffer([]byte{tc.wire, 0x00})
			err := (&FixedHeader{}).Unpack(buf)
			if (err != nil) != tc.wantErr {
				t.Errorf("Unpack(0x%02X) err = %v, wantErr %v", tc.wire, err, tc.wantErr)
			}
		})
	}
}

func TestFixedHeaderShortBuffer(t *testing.T) {
	if err := (&FixedHeader{}).Unpack(bytes.NewBuffer(nil)); err != ErrShortBuffer {
		t.Errorf("Unpack(empty) = %v, want ErrShortBuffer", err)
	}
	if err := (&FixedHeader{}).Unpack(bytes.NewBuffer([]byte{0x10})); err != ErrShortBuffer {
		t.Errorf("Unpack(no length byte) = %v, want ErrShortBuffer", err)
	}
}

func BenchmarkFixedHeaderPack(b *testing.B) {
	h := FixedHeader{Kind: 0x3, QoS: 1, RemainingLength: 1000}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var buf bytes.Buffer
		_ = h.Pack(&buf)
	}
}
