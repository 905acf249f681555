// internal/status/constants.go
package status

// Exchange status block layout constants.
// These values define the register layout seen by Modbus clients and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of logical slots per device.
const SlotsPerDevice = 20

// ---- SLOT INDICES ----

// SlotHealthCode holds the exchange health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last raw error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the exchange has been in error.
const SlotSecondsInError = 2

// ---- RESERVED RANGE ----

// SlotWatchdog mirrors the watchdog word of the last input record.
const SlotWatchdog = 3

// SlotCycles holds the number of completed cycles, wrapping at 65536.
const SlotCycles = 4

// Slots 5-10 are reserved for future use.
const SlotReservedStart = 5
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
// Device name is always placed at the END of the status block.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy exchange: the last cycle read succeeded.
const HealthOK uint16 = 1

// HealthError represents a failed cycle read or write.
const HealthError uint16 = 2

// HealthStale represents an active session whose watchdog stopped moving.
const HealthStale uint16 = 3

// HealthDisabled represents a closed session.
const HealthDisabled uint16 = 4
