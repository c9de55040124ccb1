package resource

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		want  Name
		canon string
	}{
		{
			name:  "serial",
			in:    "ASRL1::INSTR",
			want:  Name{Interface: "ASRL", Board: "1", Class: "INSTR", Address: []string{}},
			canon: "ASRL1::INSTR",
		},
		{
			name:  "serial without class",
			in:    "ASRL2",
			want:  Name{Interface: "ASRL", Board: "2", Class: "INSTR", Address: []string{}},
			canon: "ASRL2::INSTR",
		},
		{
			name:  "gpib",
			in:    "GPIB0::8::INSTR",
			want:  Name{Interface: "GPIB", Board: "0", Class: "INSTR", Address: []string{"8"}},
			canon: "GPIB0::8::INSTR",
		},
		{
			name: "usb",
			in:   "USB0::0x1111::0x2222::0x4445::INSTR",
			want: Name{
				Interface: "USB", Board: "0", Class: "INSTR",
				Address: []string{"0x1111", "0x2222", "0x4445"},
			},
			canon: "USB0::0x1111::0x2222::0x4445::INSTR",
		},
		{
			name: "usb raw",
			in:   "USB0::0x1111::0x2222::0x4445::RAW",
			want: Name{
				Interface: "USB", Board: "0", Class: "RAW",
				Address: []string{"0x1111", "0x2222", "0x4445"},
			},
			canon: "USB0::0x1111::0x2222::0x4445::RAW",
		},
		{
			name:  "tcpip instrument",
			in:    "TCPIP0::localhost::INSTR",
			want:  Name{Interface: "TCPIP", Board: "0", Class: "INSTR", Address: []string{"localhost"}},
			canon: "TCPIP0::localhost::INSTR",
		},
		{
			name: "tcpip socket",
			in:   "TCPIP0::localhost::10001::SOCKET",
			want: Name{
				Interface: "TCPIP", Board: "0", Class: "SOCKET",
				Address: []string{"localhost", "10001"},
			},
			canon: "TCPIP0::localhost::10001::SOCKET",
		},
		{
			name:  "lower case keywords",
			in:    "asrl1::instr",
			want:  Name{Interface: "ASRL", Board: "1", Class: "INSTR", Address: []string{}},
			canon: "ASRL1::INSTR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.in, err)
			}
			if got.Interface != tt.want.Interface || got.Board != tt.want.Board || got.Class != tt.want.Class {
				t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
			if len(got.Address) != len(tt.want.Address) {
				t.Fatalf("Parse(%q) address = %v, want %v", tt.in, got.Address, tt.want.Address)
			}
			for i := range tt.want.Address {
				if got.Address[i] != tt.want.Address[i] {
					t.Errorf("Parse(%q) address[%d] = %q, want %q", tt.in, i, got.Address[i], tt.want.Address[i])
				}
			}
			if got.String() != tt.canon {
				t.Errorf("Parse(%q).String() = %q, want %q", tt.in, got.String(), tt.canon)
			}
		})
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "blank", in: "   "},
		{name: "unknown interface", in: "PXI0::1::INSTR"},
		{name: "empty segment", in: "GPIB0::::INSTR"},
		{name: "socket without port", in: "TCPIP0::localhost::SOCKET"},
		{name: "tcpip without host", in: "TCPIP0::INSTR"},
		{name: "asrl with address", in: "ASRL1::8::INSTR"},
		{name: "serial socket", in: "ASRL1::SOCKET"},
		{name: "gpib raw", in: "GPIB0::8::RAW"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse(tt.in); !errors.Is(err, ErrInvalidName) {
				t.Errorf("Parse(%q) error = %v, want ErrInvalidName", tt.in, err)
			}
		})
	}
}
