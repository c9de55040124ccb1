package definition

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeDocument(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadBundledDefault(t *testing.T) {
	set, err := NewLoader().LoadBundled("default.yaml")
	if err != nil {
		t.Fatalf("LoadBundled() error = %v", err)
	}

	want := []string{
		"ASRL1::INSTR",
		"GPIB0::8::INSTR",
		"TCPIP0::localhost::10001::SOCKET",
		"TCPIP0::localhost::INSTR",
		"USB0::0x1111::0x2222::0x4445::INSTR",
	}
	got := set.Resources()
	if len(got) != len(want) {
		t.Fatalf("Resources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Resources()[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if _, err := set.NewDevice("GPIB9::1::INSTR"); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("NewDevice(unbound) error = %v, want ErrUnknownResource", err)
	}
}

func TestBundledDeviceBehaviour(t *testing.T) {
	set, err := NewLoader().LoadBundled("default.yaml")
	if err != nil {
		t.Fatalf("LoadBundled() error = %v", err)
	}
	dev, err := set.NewDevice("ASRL1::INSTR")
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}

	steps := []struct {
		query string
		want  string
		sent  bool
	}{
		{query: "?IDN", want: "LSG Serial #1234", sent: true},
		{query: "*RST", sent: false},
		{query: "?FREQ", want: "100.00", sent: true},
		{query: "!FREQ 500.0", want: "OK", sent: true},
		{query: "?FREQ", want: "500.00", sent: true},
		// Out of range: device error response, state untouched.
		{query: "!FREQ 0.1", want: "ERROR", sent: true},
		{query: "?FREQ", want: "500.00", sent: true},
		{query: "*ESR?", want: "32", sent: true},
		{query: ":SYST:ERR?", want: "1, Command Error", sent: true},
		{query: ":SYST:ERR?", want: "0, No Error", sent: true},
		// Setter-specific error response.
		{query: "!AMP 20.0", want: "AMP_ERROR", sent: true},
		{query: "?OUT", want: "OFF", sent: true},
		{query: "!OUT ON", want: "OK", sent: true},
		{query: "?OUT", want: "ON", sent: true},
		{query: "?CH1:VOLT", want: "0.00", sent: true},
		{query: "!CH2:VOLT -5.0", want: "OK", sent: true},
		{query: "?CH2:VOLT", want: "-5.00", sent: true},
		{query: "?CH1:VOLT", want: "0.00", sent: true},
	}
	for _, step := range steps {
		resp := dev.Handle(step.query)
		if resp.Sent() != step.sent {
			t.Fatalf("Handle(%q) sent = %v, want %v", step.query, resp.Sent(), step.sent)
		}
		if step.sent && resp.String() != step.want {
			t.Fatalf("Handle(%q) = %q, want %q", step.query, resp.String(), step.want)
		}
	}

	noise := dev.Handle("?NOISE")
	if !noise.Sent() {
		t.Fatal("Handle(?NOISE) produced no response")
	}
	if fields := strings.Split(noise.String(), ","); len(fields) != 3 {
		t.Errorf("Handle(?NOISE) = %q, want 3 comma-separated samples", noise.String())
	}
}

func TestBundledEOMPairs(t *testing.T) {
	set, err := NewLoader().LoadBundled("default.yaml")
	if err != nil {
		t.Fatalf("LoadBundled() error = %v", err)
	}
	def, err := set.Definition("ASRL1::INSTR")
	if err != nil {
		t.Fatalf("Definition() error = %v", err)
	}

	pair, ok := def.EOM("ASRL", "INSTR")
	if !ok {
		t.Fatal("EOM(ASRL, INSTR) not declared")
	}
	if pair.Query != "\r\n" || pair.Response != "\n" {
		t.Errorf("EOM(ASRL, INSTR) = %q/%q, want %q/%q",
			pair.Query, pair.Response, "\r\n", "\n")
	}
}

func TestLoadVersionCheck(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		wantErr bool
	}{
		{name: "current", spec: `spec: "1.1"`},
		{name: "older minor", spec: `spec: "1.0"`},
		{name: "newer minor", spec: `spec: "1.2"`, wantErr: true},
		{name: "newer major", spec: `spec: "2.0"`, wantErr: true},
		{name: "older major", spec: `spec: "0.9"`, wantErr: true},
		{name: "missing", spec: ``, wantErr: true},
		{name: "malformed", spec: `spec: "one.one"`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			path := writeDocument(t, dir, "doc.yaml", tt.spec+"\n")
			_, err := NewLoader().Load(path)
			if tt.wantErr {
				if !errors.Is(err, ErrSpecVersion) {
					t.Fatalf("Load() error = %v, want ErrSpecVersion", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
		})
	}
}

func TestLoadUnknownDevice(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "doc.yaml", `
spec: "1.1"
devices:
  meter:
    dialogues:
      - q: "?IDN"
        r: "METER"
resources:
  ASRL1::INSTR:
    device: oscilloscope
`)
	if _, err := NewLoader().Load(path); !errors.Is(err, ErrUnknownDevice) {
		t.Fatalf("Load() error = %v, want ErrUnknownDevice", err)
	}
}

func TestLoadResourceWithoutDevice(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "doc.yaml", `
spec: "1.1"
resources:
  ASRL1::INSTR: {}
`)
	if _, err := NewLoader().Load(path); !errors.Is(err, ErrFormat) {
		t.Fatalf("Load() error = %v, want ErrFormat", err)
	}
}

func TestLoadFilesDuplicateResource(t *testing.T) {
	dir := t.TempDir()
	doc := `
spec: "1.1"
devices:
  meter:
    dialogues:
      - q: "?IDN"
        r: "METER"
resources:
  ASRL1::INSTR:
    device: meter
`
	a := writeDocument(t, dir, "a.yaml", doc)
	b := writeDocument(t, dir, "b.yaml", doc)

	if _, err := NewLoader().LoadFiles([]string{a, b}); !errors.Is(err, ErrDuplicateResource) {
		t.Fatalf("LoadFiles() error = %v, want ErrDuplicateResource", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewLoader().Load(path); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("Load() error = %v, want ErrFileNotFound", err)
	}
}

func TestLoadBases(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "doc.yaml", `
spec: "1.1"
devices:
  base meter:
    delimiter: ";"
    dialogues:
      - q: "?IDN"
        r: "BASE"
      - q: "?VER"
        r: "1.0"
    properties:
      range:
        default: 10
        getter:
          q: "?RNG"
          r: "{:d}"
        specs:
          type: int
  precision meter:
    bases:
      - device: base meter
    dialogues:
      - q: "?IDN"
        r: "PRECISION"
resources:
  GPIB0::5::INSTR:
    device: precision meter
`)
	set, err := NewLoader().Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	dev, err := set.NewDevice("GPIB0::5::INSTR")
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}

	// The referring device overrides the base dialogue.
	if got := dev.Handle("?IDN").String(); got != "PRECISION" {
		t.Errorf("Handle(?IDN) = %q, want %q", got, "PRECISION")
	}
	// Undeclared base entries are inherited.
	if got := dev.Handle("?VER").String(); got != "1.0" {
		t.Errorf("Handle(?VER) = %q, want %q", got, "1.0")
	}
	if got := dev.Handle("?RNG").String(); got != "10" {
		t.Errorf("Handle(?RNG) = %q, want %q", got, "10")
	}
}

func TestLoadBaseCycle(t *testing.T) {
	dir := t.TempDir()
	path := writeDocument(t, dir, "doc.yaml", `
spec: "1.1"
devices:
  a:
    bases:
      - device: b
    dialogues:
      - q: "?A"
        r: "A"
  b:
    bases:
      - device: a
    dialogues:
      - q: "?B"
        r: "B"
resources:
  ASRL1::INSTR:
    device: a
`)
	if _, err := NewLoader().Load(path); !errors.Is(err, ErrFormat) {
		t.Fatalf("Load() error = %v, want ErrFormat (base cycle)", err)
	}
}

func TestLoadCrossFileReference(t *testing.T) {
	dir := t.TempDir()
	writeDocument(t, dir, "devices.yaml", `
spec: "1.1"
devices:
  meter:
    dialogues:
      - q: "?IDN"
        r: "SHARED METER"
`)
	main := writeDocument(t, dir, "main.yaml", `
spec: "1.1"
resources:
  TCPIP0::localhost::INSTR:
    device: meter
    filename: devices.yaml
`)
	set, err := NewLoader().Load(main)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	dev, err := set.NewDevice("TCPIP0::localhost::INSTR")
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	if got := dev.Handle("?IDN").String(); got != "SHARED METER" {
		t.Errorf("Handle(?IDN) = %q, want %q", got, "SHARED METER")
	}
}

func TestLoadBundledReference(t *testing.T) {
	dir := t.TempDir()
	main := writeDocument(t, dir, "main.yaml", `
spec: "1.1"
resources:
  ASRL7::INSTR:
    device: signal generator
    filename: default.yaml
    bundled: true
`)
	set, err := NewLoader().Load(main)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	dev, err := set.NewDevice("ASRL7::INSTR")
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	if got := dev.Handle("?IDN").String(); got != "LSG Serial #1234" {
		t.Errorf("Handle(?IDN) = %q, want %q", got, "LSG Serial #1234")
	}
}

func TestLoadSharedDefinition(t *testing.T) {
	loader := NewLoader()
	set, err := loader.LoadBundled("default.yaml")
	if err != nil {
		t.Fatalf("LoadBundled() error = %v", err)
	}

	first, err := set.Definition("ASRL1::INSTR")
	if err != nil {
		t.Fatalf("Definition() error = %v", err)
	}
	second, err := set.Definition("GPIB0::8::INSTR")
	if err != nil {
		t.Fatalf("Definition() error = %v", err)
	}
	if first != second {
		t.Error("resources bound to the same device should share one compiled definition")
	}

	// Devices spawned from the shared definition do not share state.
	a := first.NewDevice()
	b := first.NewDevice()
	a.Handle("!FREQ 250.0")
	if got := b.Handle("?FREQ").String(); got != "100.00" {
		t.Errorf("second device frequency = %q, want untouched default %q", got, "100.00")
	}
}

func TestBundledNames(t *testing.T) {
	names := BundledNames()
	found := false
	for _, name := range names {
		if name == "default.yaml" {
			found = true
		}
	}
	if !found {
		t.Errorf("BundledNames() = %v, want to contain default.yaml", names)
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: `\r\n`, want: "\r\n"},
		{in: `\n`, want: "\n"},
		{in: `OUT 1\n`, want: "OUT 1\n"},
		{in: "plain", want: "plain"},
	}
	for _, tt := range tests {
		if got := unescape(tt.in); got != tt.want {
			t.Errorf("unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
