package dps150

// fieldRule decodes a payload into st. Rules write into a scratch copy,
// which is committed only when the rule succeeds.
type fieldRule func(st *State, payload []byte) error

type floatAt struct {
	off int
	dst func(*State) *float32
}

func floats(items ...floatAt) fieldRule {
	return func(st *State, payload []byte) error {
		for _, item := range items {
			v, err := Float32At(payload, item.off)
			if err != nil {
				return err
			}
			*item.dst(st) = v
		}
		return nil
	}
}

func flagAt(off int, dst func(*State) *bool) fieldRule {
	return func(st *State, payload []byte) error {
		v, err := BoolAt(payload, off)
		if err != nil {
			return err
		}
		*dst(st) = v
		return nil
	}
}

func chain(rules ...fieldRule) fieldRule {
	return func(st *State, payload []byte) error {
		for _, rule := range rules {
			if err := rule(st, payload); err != nil {
				return err
			}
		}
		return nil
	}
}

func setVoltage(s *State) *float32        { return &s.setVoltage }
func setCurrent(s *State) *float32        { return &s.setCurrent }
func inputVoltage(s *State) *float32      { return &s.inputVoltage }
func outputVoltage(s *State) *float32     { return &s.outputVoltage }
func outputCurrent(s *State) *float32     { return &s.outputCurrent }
func outputPower(s *State) *float32       { return &s.outputPower }
func outputClosed(s *State) *bool         { return &s.outputClosed }
func upperLimitVoltage(s *State) *float32 { return &s.upperLimitVoltage }
func upperLimitCurrent(s *State) *float32 { return &s.upperLimitCurrent }
func temperature(s *State) *float32       { return &s.temperature }

// Offsets in the FieldAll payload.
const (
	allInputVoltage      = 0
	allSetVoltage        = 4
	allSetCurrent        = 8
	allOutputVoltage     = 12
	allOutputCurrent     = 16
	allOutputPower       = 20
	allTemperature       = 24
	allOutputClosed      = 107
	allUpperLimitVoltage = 111
	allUpperLimit2       = 115
)

var stateRules = map[Field]fieldRule{
	FieldInputVoltage: floats(floatAt{0, inputVoltage}),
	FieldOutput: floats(
		floatAt{0, outputVoltage},
		floatAt{4, outputCurrent},
		floatAt{8, outputPower},
	),
	FieldTemperature:       floats(floatAt{0, temperature}),
	FieldOutputEnable:      flagAt(0, outputClosed),
	FieldUpperLimitVoltage: floats(floatAt{0, upperLimitVoltage}),
	FieldUpperLimitCurrent: floats(floatAt{0, upperLimitCurrent}),
	FieldAll: chain(
		floats(
			floatAt{allInputVoltage, inputVoltage},
			floatAt{allSetVoltage, setVoltage},
			floatAt{allSetCurrent, setCurrent},
			floatAt{allOutputVoltage, outputVoltage},
			floatAt{allOutputCurrent, outputCurrent},
			floatAt{allOutputPower, outputPower},
			floatAt{allTemperature, temperature},
		),
		flagAt(allOutputClosed, outputClosed),
		// Both offsets land in upperlimit_voltage, 115 wins, and
		// upperlimit_current is left alone.
		floats(
			floatAt{allUpperLimitVoltage, upperLimitVoltage},
			floatAt{allUpperLimit2, upperLimitVoltage},
		),
	),
}

var infoFields = map[Field]bool{
	FieldModelName:       true,
	FieldHardwareVersion: true,
	FieldFirmwareVersion: true,
}

// apply decodes payload of field into st. It returns handled=false for
// fields without a decoding rule.
func apply(st *State, field Field, payload []byte) (handled bool, err error) {
	rule, ok := stateRules[field]
	if !ok {
		return false, nil
	}
	scratch := *st
	if err = rule(&scratch, payload); err != nil {
		if fe, ok := err.(*FieldError); ok {
			fe.Field = field
		}
		return true, err
	}
	*st = scratch
	return true, nil
}
