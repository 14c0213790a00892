package model

import (
	"encoding/json"
	"fmt"
)

// EquipmentSelection is the machines field of a reservation request. Clients
// historically sent either a single machine name or a list of names; this
// models the two shapes as an explicit variant instead of a dynamic union.
type EquipmentSelection struct {
	multiple bool
	names    []string
}

// SingleEquipment selects one machine by name.
func SingleEquipment(name string) EquipmentSelection {
	return EquipmentSelection{names: []string{name}}
}

// MultipleEquipment selects several machines by name.
func MultipleEquipment(names []string) EquipmentSelection {
	return EquipmentSelection{multiple: true, names: names}
}

// Names returns the selected machine names. Never nil.
func (e EquipmentSelection) Names() []string {
	if e.names == nil {
		return []string{}
	}
	return e.names
}

// IsMultiple reports whether the selection was made as a list.
func (e EquipmentSelection) IsMultiple() bool {
	return e.multiple
}

// UnmarshalJSON accepts either a JSON string or an array of strings.
func (e *EquipmentSelection) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*e = SingleEquipment(single)
		return nil
	}

	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*e = MultipleEquipment(many)
		return nil
	}

	return fmt.Errorf("equipment must be a string or an array of strings")
}

// MarshalJSON preserves the shape the selection was made with.
func (e EquipmentSelection) MarshalJSON() ([]byte, error) {
	if !e.multiple && len(e.names) == 1 {
		return json.Marshal(e.names[0])
	}
	return json.Marshal(e.Names())
}
