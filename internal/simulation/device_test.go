package simulation

import (
	"strconv"
	"strings"
	"testing"
)

// testDefinition builds a definition resembling the reference signal
// generator used throughout the loader tests: an identification
// dialogue, a constrained frequency property and an error
// configuration with one status register and one error queue.
func testDefinition(t *testing.T) *Definition {
	t.Helper()

	def := NewDefinition("lsg", ";")
	def.AddDialogue("?IDN", Text("LSG Serial #1234"))
	def.AddDialogue("!CAL", NoResponse)

	err := def.AddProperty("frequency", "100.0",
		&GetterSpec{Query: "?FREQ", Response: "{:.2f}"},
		&SetterSpec{Query: "!FREQ {:.2f}", Response: Text("OK")},
		&ValueSpec{Type: TypeFloat, Min: fptr(1), Max: fptr(100000)},
	)
	if err != nil {
		t.Fatalf("AddProperty(frequency) failed: %v", err)
	}

	err = def.AddProperty("mode", "AUTO",
		&GetterSpec{Query: "?MODE", Response: "{:s}"},
		&SetterSpec{
			Query:    "!MODE {:s}",
			Response: Text("OK"),
			Error:    Text("MODE_ERROR"),
			HasError: true,
		},
		&ValueSpec{Type: TypeString, Valid: []string{"AUTO", "MANUAL"}},
	)
	if err != nil {
		t.Fatalf("AddProperty(mode) failed: %v", err)
	}

	def.SetErrorResponse(ErrorKindCommand, Text("ERROR"))
	def.AddStatusRegister("?ESR", map[string]uint64{
		ErrorKindCommand: 32,
		ErrorKindQuery:   4,
	}, false)
	def.AddErrorQueue("?ERR", map[string]Response{
		ErrorKindCommand: Text("1, command error"),
	}, Text("0, no error"))
	def.AddEOM("ASRL", "INSTR", EOMPair{Query: "\r\n", Response: "\n"})

	return def
}

func TestDeviceDialogues(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	resp := dev.Handle("?IDN")
	if !resp.Sent() || resp.String() != "LSG Serial #1234" {
		t.Errorf("Handle(?IDN) = %q sent=%v, want identification", resp.String(), resp.Sent())
	}

	if resp := dev.Handle("!CAL"); resp.Sent() {
		t.Errorf("Handle(!CAL) sent %q, want no reply", resp.String())
	}
}

func TestDeviceGetterSetter(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	if got := dev.Handle("?FREQ").String(); got != "100.00" {
		t.Errorf("initial ?FREQ = %q, want 100.00", got)
	}

	if got := dev.Handle("!FREQ 250.5").String(); got != "OK" {
		t.Errorf("!FREQ 250.5 = %q, want OK", got)
	}
	if got := dev.Handle("?FREQ").String(); got != "250.50" {
		t.Errorf("?FREQ after set = %q, want 250.50", got)
	}
}

// Repeated gets on an unmodified property must return the same
// response.
func TestDeviceGetterIdempotent(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	first := dev.Handle("?MODE").String()
	for i := 0; i < 3; i++ {
		if got := dev.Handle("?MODE").String(); got != first {
			t.Fatalf("get %d = %q, want %q", i, got, first)
		}
	}
}

func TestDeviceSetterRangeEnforcement(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	if got := dev.Handle("!FREQ 999999").String(); got != "ERROR" {
		t.Errorf("out-of-range set = %q, want ERROR", got)
	}
	if got := dev.Handle("?FREQ").String(); got != "100.00" {
		t.Errorf("?FREQ after rejected set = %q, want untouched 100.00", got)
	}
}

func TestDeviceSetterEnumEnforcement(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	// The mode setter configures its own error response.
	if got := dev.Handle("!MODE OFF").String(); got != "MODE_ERROR" {
		t.Errorf("invalid enum set = %q, want MODE_ERROR", got)
	}
	if got := dev.Handle("?MODE").String(); got != "AUTO" {
		t.Errorf("?MODE after rejected set = %q, want untouched AUTO", got)
	}
}

func TestDeviceStatusRegisterAccumulation(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	// command_error weight 32, query_error weight 4. Both asserted
	// reads as 36; registers accumulate because clear_on_read is off.
	dev.Handle("bogus query")
	dev.RaiseError(ErrorKindQuery)

	if got := dev.Handle("?ESR").String(); got != "36" {
		t.Errorf("?ESR = %q, want 36", got)
	}
	if got := dev.Handle("?ESR").String(); got != "36" {
		t.Errorf("?ESR second read = %q, want 36 (no auto-clear)", got)
	}
}

func TestDeviceStatusRegisterSingleFlag(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	dev.RaiseError(ErrorKindQuery)
	if got := dev.Handle("?ESR").String(); got != "4" {
		t.Errorf("?ESR = %q, want 4", got)
	}
}

func TestDeviceStatusRegisterClearOnRead(t *testing.T) {
	def := NewDefinition("dev", "")
	def.AddStatusRegister("*ESR?", map[string]uint64{ErrorKindCommand: 32}, true)
	def.SetErrorResponse(ErrorKindCommand, Text("ERROR"))
	dev := def.NewDevice()

	dev.Handle("bogus")
	if got := dev.Handle("*ESR?").String(); got != "32" {
		t.Errorf("*ESR? = %q, want 32", got)
	}
	if got := dev.Handle("*ESR?").String(); got != "0" {
		t.Errorf("*ESR? after clearing read = %q, want 0", got)
	}
}

func TestDeviceErrorQueue(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	if got := dev.Handle("?ERR").String(); got != "0, no error" {
		t.Errorf("empty queue read = %q, want default", got)
	}

	dev.Handle("bogus")
	dev.Handle("also bogus")

	if got := dev.Handle("?ERR").String(); got != "1, command error" {
		t.Errorf("first queued error = %q", got)
	}
	if got := dev.Handle("?ERR").String(); got != "1, command error" {
		t.Errorf("second queued error = %q", got)
	}
	if got := dev.Handle("?ERR").String(); got != "0, no error" {
		t.Errorf("drained queue read = %q, want default", got)
	}
}

func TestDeviceUnmatchedQuery(t *testing.T) {
	configured := testDefinition(t).NewDevice()
	if got := configured.Handle("?NOPE").String(); got != "ERROR" {
		t.Errorf("unmatched query with error config = %q, want ERROR", got)
	}

	// A device without an error configuration drops the message.
	bare := NewDefinition("bare", "")
	bare.AddDialogue("?IDN", Text("BARE"))
	dev := bare.NewDevice()
	if resp := dev.Handle("?NOPE"); resp.Sent() {
		t.Errorf("unmatched query without error config sent %q, want silence", resp.String())
	}
}

func TestDeviceStructuralSetterMismatch(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	// Prefix matches the frequency setter but the payload is not a
	// float: structural mismatch, command error, state untouched.
	if got := dev.Handle("!FREQ fast").String(); got != "ERROR" {
		t.Errorf("structural mismatch = %q, want ERROR", got)
	}
	if got := dev.Handle("?FREQ").String(); got != "100.00" {
		t.Errorf("?FREQ after mismatch = %q, want 100.00", got)
	}
}

func TestDeviceInstanceIsolation(t *testing.T) {
	def := testDefinition(t)
	a := def.NewDevice()
	b := def.NewDevice()

	a.Handle("!FREQ 5000")
	if got := b.Handle("?FREQ").String(); got != "100.00" {
		t.Errorf("second instance saw %q, want default 100.00", got)
	}
}

func TestDeviceEOMFallback(t *testing.T) {
	dev := testDefinition(t).NewDevice()

	pair := dev.EOM("ASRL", "INSTR")
	if pair.Query != "\r\n" || pair.Response != "\n" {
		t.Errorf("EOM(ASRL, INSTR) = %+v, want declared pair", pair)
	}

	fallback := dev.EOM("GPIB", "INSTR")
	if fallback.Query != "\n" || fallback.Response != "\n" {
		t.Errorf("EOM(GPIB, INSTR) = %+v, want LF fallback", fallback)
	}
}

func TestDeviceRandomDirective(t *testing.T) {
	def := NewDefinition("noise", "")
	rd, err := NewRandomDirective(0, 10, 3, "{:.3f}", ",")
	if err != nil {
		t.Fatalf("NewRandomDirective failed: %v", err)
	}
	def.AddRandomDialogue("?NOISE", rd)

	err = def.AddProperty("level", "1",
		&GetterSpec{Query: "?LVL", Response: "{:d}"},
		nil,
		&ValueSpec{Type: TypeInt},
	)
	if err != nil {
		t.Fatalf("AddProperty failed: %v", err)
	}

	dev := def.NewDevice()
	for call := 0; call < 5; call++ {
		resp := dev.Handle("?NOISE")
		parts := strings.Split(resp.String(), ",")
		if len(parts) != 3 {
			t.Fatalf("call %d: got %d values, want 3 (%q)", call, len(parts), resp.String())
		}
		for _, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				t.Fatalf("call %d: sample %q is not a float", call, p)
			}
			if v < 0 || v > 10 {
				t.Errorf("call %d: sample %v outside [0, 10]", call, v)
			}
		}
	}

	// Random responses never touch stored property state.
	if got := dev.Handle("?LVL").String(); got != "1" {
		t.Errorf("?LVL after random calls = %q, want 1", got)
	}
}

func TestNewRandomDirectiveInvariants(t *testing.T) {
	if _, err := NewRandomDirective(10, 0, 3, "", ""); err == nil {
		t.Error("min > max accepted, want error")
	}
	if _, err := NewRandomDirective(0, 10, 0, "", ""); err == nil {
		t.Error("count 0 accepted, want error")
	}
	if _, err := NewRandomDirective(0, 10, 1, "OK", ""); err == nil {
		t.Error("literal format accepted, want error")
	}
}

func TestAddPropertyRejections(t *testing.T) {
	def := NewDefinition("dev", "")

	if err := def.AddProperty("inert", "0", nil, nil, nil); err == nil {
		t.Error("inert property accepted, want ErrInertProperty")
	}

	getter := &GetterSpec{Query: "?A", Response: "{:d}"}
	if err := def.AddProperty("a", "1", getter, nil, &ValueSpec{Type: TypeInt}); err != nil {
		t.Fatalf("AddProperty(a) failed: %v", err)
	}
	if err := def.AddProperty("a", "1", getter, nil, &ValueSpec{Type: TypeInt}); err == nil {
		t.Error("duplicate property accepted, want ErrDuplicateProperty")
	}

	bad := &ValueSpec{Type: TypeInt, Min: fptr(10)}
	if err := def.AddProperty("b", "1", getter, nil, bad); err == nil {
		t.Error("default below min accepted, want validation error")
	}
}
