package dps150

import (
	"bytes"
	"fmt"
)

// State is the last-known telemetry of a device.
// It's only updated by decoding frames.
type State struct {
	setVoltage        float32
	setCurrent        float32
	inputVoltage      float32
	outputVoltage     float32
	outputCurrent     float32
	outputPower       float32
	outputClosed      bool
	upperLimitVoltage float32
	upperLimitCurrent float32
	temperature       float32
}

// Snapshot is an immutable copy of State.
type Snapshot struct {
	SetVoltage        float32
	SetCurrent        float32
	InputVoltage      float32
	OutputVoltage     float32
	OutputCurrent     float32
	OutputPower       float32
	OutputClosed      bool
	UpperLimitVoltage float32
	UpperLimitCurrent float32
	Temperature       float32
}

// Snapshot copies the current values.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		SetVoltage:        s.setVoltage,
		SetCurrent:        s.setCurrent,
		InputVoltage:      s.inputVoltage,
		OutputVoltage:     s.outputVoltage,
		OutputCurrent:     s.outputCurrent,
		OutputPower:       s.outputPower,
		OutputClosed:      s.outputClosed,
		UpperLimitVoltage: s.upperLimitVoltage,
		UpperLimitCurrent: s.upperLimitCurrent,
		Temperature:       s.temperature,
	}
}

// String renders the snapshot one value per line.
func (s Snapshot) String() string {
	var w bytes.Buffer
	fmt.Fprintf(&w, "set_current:%.2f\n", s.SetCurrent)
	fmt.Fprintf(&w, "set_voltage:%.2f\n", s.SetVoltage)
	fmt.Fprintf(&w, "input_voltage:%.2f\n", s.InputVoltage)
	fmt.Fprintf(&w, "output_voltage:%.2f\n", s.OutputVoltage)
	fmt.Fprintf(&w, "output_current:%.2f\n", s.OutputCurrent)
	fmt.Fprintf(&w, "output_power:%.2f\n", s.OutputPower)
	fmt.Fprintf(&w, "output_closed:%v\n", s.OutputClosed)
	fmt.Fprintf(&w, "upperlimit_voltage:%.2f\n", s.UpperLimitVoltage)
	fmt.Fprintf(&w, "upperlimit_current:%.2f\n", s.UpperLimitCurrent)
	fmt.Fprintf(&w, "temperature:%.2f\n", s.Temperature)
	return w.String()
}
