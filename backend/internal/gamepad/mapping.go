package gamepad

import "math"

// triggerPressThreshold is the normalized trigger value at which a trigger
// reads as a pressed standard button.
const triggerPressThreshold = 0.5

// AxisMapping routes a raw axis index to a standard axis.
type AxisMapping struct {
	Index  int32
	Target int
	Invert bool
}

// TriggerMapping routes a raw analog trigger axis to a standard button.
type TriggerMapping struct {
	Index  int32
	Target int
	// Some devices report -32768..32767, others 0..32767.
	RawMin int16
	RawMax int16
}

// ButtonMapping routes a raw button index to a standard button.
type ButtonMapping struct {
	Index  int32
	Target int
}

// DeviceMapping holds the complete mapping for a specific device type.
type DeviceMapping struct {
	Name     string
	Axes     []AxisMapping
	Triggers []TriggerMapping
	Buttons  []ButtonMapping
	HasHat   bool
}

// NormalizeAxis converts a raw axis value (-32768..32767) to -1.0..1.0.
func NormalizeAxis(raw int16) float64 {
	v := float64(raw) / math.MaxInt16
	if v < -1.0 {
		v = -1.0
	}
	return v
}

// NormalizeTrigger converts a raw trigger value to 0.0..1.0.
func NormalizeTrigger(raw int16, rawMin, rawMax int16) float64 {
	if rawMax == rawMin {
		return 0
	}
	v := (float64(raw) - float64(rawMin)) / (float64(rawMax) - float64(rawMin))
	if v < 0 {
		v = 0
	}
	if v > 1 {
		v = 1
	}
	return v
}

// TriggerPressed reports whether a normalized trigger value counts as a press.
func TriggerPressed(v float64) bool {
	return v >= triggerPressThreshold
}

var standardSticks = []AxisMapping{
	{Index: 0, Target: AxisLeftX},
	{Index: 1, Target: AxisLeftY},
	{Index: 2, Target: AxisRightX},
	{Index: 3, Target: AxisRightY},
}

var fullRangeTriggers = []TriggerMapping{
	{Index: 4, Target: ButtonLT, RawMin: -32768, RawMax: 32767},
	{Index: 5, Target: ButtonRT, RawMin: -32768, RawMax: 32767},
}

// Built-in mappings for common controllers.

var xboxMapping = &DeviceMapping{
	Name:     "xbox",
	Axes:     standardSticks,
	Triggers: fullRangeTriggers,
	Buttons: []ButtonMapping{
		{Index: 0, Target: ButtonA},
		{Index: 1, Target: ButtonB},
		{Index: 2, Target: ButtonX},
		{Index: 3, Target: ButtonY},
		{Index: 4, Target: ButtonLB},
		{Index: 5, Target: ButtonRB},
		{Index: 6, Target: ButtonSelect},
		{Index: 7, Target: ButtonStart},
		{Index: 8, Target: ButtonL3},
		{Index: 9, Target: ButtonR3},
	},
	HasHat: true,
}

var playstationMapping = &DeviceMapping{
	Name:     "playstation",
	Axes:     standardSticks,
	Triggers: fullRangeTriggers,
	Buttons: []ButtonMapping{
		{Index: 0, Target: ButtonA},      // Cross
		{Index: 1, Target: ButtonB},      // Circle
		{Index: 2, Target: ButtonX},      // Square
		{Index: 3, Target: ButtonY},      // Triangle
		{Index: 4, Target: ButtonSelect}, // Share / Create
		{Index: 6, Target: ButtonStart},  // Options
		{Index: 7, Target: ButtonL3},
		{Index: 8, Target: ButtonR3},
		{Index: 9, Target: ButtonLB},  // L1
		{Index: 10, Target: ButtonRB}, // R1
		{Index: 11, Target: ButtonDpadUp},
		{Index: 12, Target: ButtonDpadDown},
		{Index: 13, Target: ButtonDpadLeft},
		{Index: 14, Target: ButtonDpadRight},
	},
	HasHat: true,
}

var switchProMapping = &DeviceMapping{
	Name: "switch_pro",
	Axes: standardSticks,
	// Digital ZL/ZR.
	Buttons: []ButtonMapping{
		{Index: 0, Target: ButtonA},
		{Index: 1, Target: ButtonB},
		{Index: 2, Target: ButtonX},
		{Index: 3, Target: ButtonY},
		{Index: 4, Target: ButtonLB},
		{Index: 5, Target: ButtonRB},
		{Index: 6, Target: ButtonLT},
		{Index: 7, Target: ButtonRT},
		{Index: 8, Target: ButtonSelect},
		{Index: 9, Target: ButtonStart},
		{Index: 10, Target: ButtonL3},
		{Index: 11, Target: ButtonR3},
	},
	HasHat: true,
}

var genericMapping = &DeviceMapping{
	Name:     "generic",
	Axes:     standardSticks,
	Triggers: fullRangeTriggers,
	Buttons: []ButtonMapping{
		{Index: 0, Target: ButtonA},
		{Index: 1, Target: ButtonB},
		{Index: 2, Target: ButtonX},
		{Index: 3, Target: ButtonY},
		{Index: 4, Target: ButtonLB},
		{Index: 5, Target: ButtonRB},
		{Index: 6, Target: ButtonSelect},
		{Index: 7, Target: ButtonStart},
		{Index: 8, Target: ButtonL3},
		{Index: 9, Target: ButtonR3},
	},
	HasHat: true,
}

// Known vendor/product IDs.
type deviceKey struct {
	VendorID  uint16
	ProductID uint16
}

var knownDevices = map[deviceKey]*DeviceMapping{
	// Microsoft Xbox controllers
	{0x045E, 0x028E}: xboxMapping, // Xbox 360
	{0x045E, 0x02FF}: xboxMapping, // Xbox One
	{0x045E, 0x0B12}: xboxMapping, // Xbox Series X|S
	{0x045E, 0x0B13}: xboxMapping, // Xbox Series X|S (wireless)
	// Sony PlayStation controllers
	{0x054C, 0x0CE6}: playstationMapping, // DualSense
	{0x054C, 0x09CC}: playstationMapping, // DualShock 4 v2
	{0x054C, 0x05C4}: playstationMapping, // DualShock 4 v1
	// Nintendo Switch Pro Controller
	{0x057E, 0x2009}: switchProMapping,
}

// GetMapping returns the appropriate mapping for a device identified by vendor/product ID.
// Falls back to generic mapping if no specific mapping is found.
func GetMapping(vendorID, productID uint16) *DeviceMapping {
	key := deviceKey{VendorID: vendorID, ProductID: productID}
	if m, ok := knownDevices[key]; ok {
		return m
	}
	return genericMapping
}

// RawDevice is the per-tick raw view of a joystick that a DeviceMapping reads.
type RawDevice interface {
	Axis(index int32) int16
	Button(index int32) bool
	NumButtons() int32
	Hat() (uint8, bool)
}

const (
	hatUp    uint8 = 0x01
	hatRight uint8 = 0x02
	hatDown  uint8 = 0x04
	hatLeft  uint8 = 0x08
)

// Apply reads raw into the standard axes and buttons of pad.
func (m *DeviceMapping) Apply(raw RawDevice, pad *Pad) {
	for _, am := range m.Axes {
		v := NormalizeAxis(raw.Axis(am.Index))
		if am.Invert {
			v = -v
		}
		pad.Axes[am.Target] = v
	}

	for _, tm := range m.Triggers {
		v := NormalizeTrigger(raw.Axis(tm.Index), tm.RawMin, tm.RawMax)
		pad.Buttons[tm.Target] = TriggerPressed(v)
	}

	numButtons := raw.NumButtons()
	for _, bm := range m.Buttons {
		if bm.Index >= numButtons {
			continue
		}
		if raw.Button(bm.Index) {
			pad.Buttons[bm.Target] = true
		}
	}

	if !m.HasHat {
		return
	}
	if hat, ok := raw.Hat(); ok {
		pad.Buttons[ButtonDpadUp] = pad.Buttons[ButtonDpadUp] || hat&hatUp != 0
		pad.Buttons[ButtonDpadRight] = pad.Buttons[ButtonDpadRight] || hat&hatRight != 0
		pad.Buttons[ButtonDpadDown] = pad.Buttons[ButtonDpadDown] || hat&hatDown != 0
		pad.Buttons[ButtonDpadLeft] = pad.Buttons[ButtonDpadLeft] || hat&hatLeft != 0
	}
}
