// internal/patient/condition.go
//
// Existing-condition options and the set type that holds them.
//
// ConditionSet is a bitmask, so membership is toggled rather than
// accumulated and duplicates cannot exist.  On the wire it is a JSON array
// of option values in display order.

package patient

import (
	"encoding/json"
	"fmt"
)

// Condition is one of the selectable pre-existing conditions.
type Condition string

const (
	ConditionDiabetes     Condition = "diabetes"
	ConditionHypertension Condition = "hypertension"
	ConditionHeartDisease Condition = "heart-disease"
	ConditionAsthma       Condition = "asthma"
	ConditionArthritis    Condition = "arthritis"
	ConditionNone         Condition = "none"
)

// Conditions lists the options in display order.  The index of each option
// is its bit in ConditionSet.
var Conditions = []Condition{
	ConditionDiabetes,
	ConditionHypertension,
	ConditionHeartDisease,
	ConditionAsthma,
	ConditionArthritis,
	ConditionNone,
}

// Label is the human-readable option text.
func (c Condition) Label() string {
	switch c {
	case ConditionDiabetes:
		return "Diabetes"
	case ConditionHypertension:
		return "Hypertension"
	case ConditionHeartDisease:
		return "Heart Disease"
	case ConditionAsthma:
		return "Asthma"
	case ConditionArthritis:
		return "Arthritis"
	case ConditionNone:
		return "None"
	}
	return string(c)
}

// Valid reports whether c is a known option.
func (c Condition) Valid() bool { return c.bit() != 0 }

func (c Condition) bit() ConditionSet {
	for i, o := range Conditions {
		if c == o {
			return 1 << i
		}
	}
	return 0
}

// ConditionSet is a set of Conditions.  The zero value is the empty set.
type ConditionSet uint8

// NewConditionSet builds a set from cs.  Unknown conditions yield an error.
func NewConditionSet(cs ...Condition) (ConditionSet, error) {
	var s ConditionSet
	for _, c := range cs {
		b := c.bit()
		if b == 0 {
			return 0, fmt.Errorf("unknown condition %q", c)
		}
		s |= b
	}
	return s, nil
}

// Has reports membership.
func (s ConditionSet) Has(c Condition) bool {
	b := c.bit()
	return b != 0 && s&b != 0
}

// Toggle flips membership of c.  Unknown conditions leave s unchanged.
func (s ConditionSet) Toggle(c Condition) ConditionSet { return s ^ c.bit() }

// Len returns the number of members.
func (s ConditionSet) Len() int {
	n := 0
	for x := s; x != 0; x &= x - 1 {
		n++
	}
	return n
}

// Slice returns the members in display order.  Never nil.
func (s ConditionSet) Slice() []Condition {
	out := make([]Condition, 0, s.Len())
	for i, c := range Conditions {
		if s&(1<<i) != 0 {
			out = append(out, c)
		}
	}
	return out
}

// MarshalJSON encodes the set as an array of option values.
func (s ConditionSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Slice())
}

// UnmarshalJSON accepts an array of option values (null means empty).
// Repeated values collapse; unknown values are an error.
func (s *ConditionSet) UnmarshalJSON(b []byte) error {
	var raw []Condition
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	set, err := NewConditionSet(raw...)
	if err != nil {
		return err
	}
	*s = set
	return nil
}
