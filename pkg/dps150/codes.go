package dps150

import "fmt"

// Header is the direction byte starting every frame.
type Header byte

// Headers
const (
	HeaderInput  Header = 0xf0 // device -> host
	HeaderOutput Header = 0xf1 // host -> device
)

// Command is the second byte of a frame.
type Command byte

// Commands
const (
	CmdGet     Command = 0xa1
	CmdBaud    Command = 0xb0
	CmdSet     Command = 0xb1
	CmdConnect Command = 0xc0
	CmdSession Command = 0xc1
)

// String implements fmt.Stringer.
func (c Command) String() string {
	switch c {
	case CmdGet:
		return "get"
	case CmdBaud:
		return "baud"
	case CmdSet:
		return "set"
	case CmdConnect:
		return "connect"
	case CmdSession:
		return "session"
	}
	return fmt.Sprintf("cmd(0x%02x)", byte(c))
}

// Field selects the device parameter a frame refers to.
type Field byte

// Float fields.
const (
	FieldInputVoltage  Field = 192
	FieldVoltageSet    Field = 193
	FieldCurrentSet    Field = 194
	FieldOutput        Field = 195 // voltage, current, power
	FieldTemperature   Field = 196
	FieldGroup1Voltage Field = 197
	FieldGroup1Current Field = 198
	FieldGroup2Voltage Field = 199
	FieldGroup2Current Field = 200
	FieldGroup3Voltage Field = 201
	FieldGroup3Current Field = 202
	FieldGroup4Voltage Field = 203
	FieldGroup4Current Field = 204
	FieldGroup5Voltage Field = 205
	FieldGroup5Current Field = 206
	FieldGroup6Voltage Field = 207
	FieldGroup6Current Field = 208
	FieldOVP           Field = 209
	FieldOCP           Field = 210
	FieldOPP           Field = 211
	FieldOTP           Field = 212
	FieldLVP           Field = 213

	FieldUpperLimitVoltage Field = 226
	FieldUpperLimitCurrent Field = 227
)

// Byte fields.
const (
	FieldBrightness     Field = 214
	FieldVolume         Field = 215
	FieldMeteringEnable Field = 216
	FieldOutputEnable   Field = 219
)

// Text fields and the composite snapshot.
const (
	FieldModelName       Field = 222
	FieldHardwareVersion Field = 223
	FieldFirmwareVersion Field = 224
	FieldAll             Field = 255
)

var fieldNames = map[Field]string{
	FieldInputVoltage:      "input_voltage",
	FieldVoltageSet:        "voltage_set",
	FieldCurrentSet:        "current_set",
	FieldOutput:            "output",
	FieldTemperature:       "temperature",
	FieldGroup1Voltage:     "group1_voltage",
	FieldGroup1Current:     "group1_current",
	FieldGroup2Voltage:     "group2_voltage",
	FieldGroup2Current:     "group2_current",
	FieldGroup3Voltage:     "group3_voltage",
	FieldGroup3Current:     "group3_current",
	FieldGroup4Voltage:     "group4_voltage",
	FieldGroup4Current:     "group4_current",
	FieldGroup5Voltage:     "group5_voltage",
	FieldGroup5Current:     "group5_current",
	FieldGroup6Voltage:     "group6_voltage",
	FieldGroup6Current:     "group6_current",
	FieldOVP:               "ovp",
	FieldOCP:               "ocp",
	FieldOPP:               "opp",
	FieldOTP:               "otp",
	FieldLVP:               "lvp",
	FieldBrightness:        "brightness",
	FieldVolume:            "volume",
	FieldMeteringEnable:    "metering_enable",
	FieldOutputEnable:      "output_enable",
	FieldModelName:         "model_name",
	FieldHardwareVersion:   "hardware_version",
	FieldFirmwareVersion:   "firmware_version",
	FieldUpperLimitVoltage: "upperlimit_voltage",
	FieldUpperLimitCurrent: "upperlimit_current",
	FieldAll:               "all",
}

// Known indicates the field is defined by the protocol.
func (f Field) Known() bool {
	_, ok := fieldNames[f]
	return ok
}

// String implements fmt.Stringer.
func (f Field) String() string {
	if name, ok := fieldNames[f]; ok {
		return name
	}
	return fmt.Sprintf("field(%d)", byte(f))
}

// BaudIndex maps a bit rate to the index expected by CmdBaud.
// Index starts from 1, 0 means unsupported.
func BaudIndex(baud int) byte {
	for n, rate := range []int{9600, 19200, 38400, 57600, 115200} {
		if rate == baud {
			return byte(n + 1)
		}
	}
	return 0
}
