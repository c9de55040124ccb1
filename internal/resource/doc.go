// Package resource parses VISA-style resource name strings into their
// interface type, board index and resource class.
//
// A resource name is a double-colon separated string such as
// "ASRL1::INSTR", "GPIB0::8::INSTR" or "TCPIP0::localhost::10001::SOCKET".
// The interface type and resource class select the end-of-message
// terminator pair a simulated device applies to its traffic; the
// remaining segments (primary address, host, port, serial numbers) are
// kept verbatim but not interpreted, because the simulation never
// opens real hardware.
package resource
