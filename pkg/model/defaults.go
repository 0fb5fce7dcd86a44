package model

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Program is one row of the portfolio overview table.
type Program struct {
	Name           string `json:"name" yaml:"name"`
	ContractNumber string `json:"contractNumber" yaml:"contractNumber"`
	Manager        string `json:"manager" yaml:"manager"`
	Status         string `json:"status" yaml:"status"`
	NextReview     string `json:"nextReview" yaml:"nextReview"`
}

// Cells returns the row text in column order, used by the portfolio filter.
func (p Program) Cells() []string {
	return []string{p.Name, p.ContractNumber, p.Manager, p.Status, p.NextReview}
}

// Demo bundles the demo form values and portfolio loaded on startup.
type Demo struct {
	State    FormState `yaml:"state"`
	Programs []Program `yaml:"programs"`
}

// DemoDefaults decodes the embedded demo data.
func DemoDefaults() (Demo, error) {
	return ParseDemo(defaultsYAML)
}

// ParseDemo decodes demo data from YAML. Collections missing from the payload
// are initialised empty so callers can append to any known collection.
func ParseDemo(data []byte) (Demo, error) {
	var demo Demo
	if err := yaml.Unmarshal(data, &demo); err != nil {
		return Demo{}, fmt.Errorf("model: decode demo data: %w", err)
	}
	demo.State = mergeIntoEmpty(demo.State)
	return demo, nil
}

// ParseFormState decodes a YAML (or JSON) draft file into a FormState.
func ParseFormState(data []byte) (FormState, error) {
	var state FormState
	if err := yaml.Unmarshal(data, &state); err != nil {
		return FormState{}, fmt.Errorf("model: decode form state: %w", err)
	}
	return mergeIntoEmpty(state), nil
}

// MarshalFormState encodes a FormState as YAML.
func MarshalFormState(state FormState) ([]byte, error) {
	out, err := yaml.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("model: encode form state: %w", err)
	}
	return out, nil
}

func mergeIntoEmpty(state FormState) FormState {
	base := NewFormState()
	for name, value := range state.Fields {
		base.Fields[name] = value
	}
	for id, rows := range state.Tables {
		base.Tables[id] = rows
	}
	for id, items := range state.Lists {
		base.Lists[id] = items
	}
	return base
}
