// cmd/intakectl/load.go
//
// YAML intake documents.
//
// A document is a flat mapping keyed by the form's wire names:
//
//	patientName: Jane Doe
//	age: 34
//	gender: female
//	existingConditions: [asthma, diabetes]
//	consentToTreatment: true
//
// Scalars are taken verbatim, so `age: 34` and `age: "34"` are the same
// input.  Unknown keys are an error rather than silently dropped.
package main

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/patient"
)

// readDoc decodes one YAML mapping.
func readDoc(r io.Reader) (map[string]yaml.Node, error) {
	doc := map[string]yaml.Node{}
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse intake document: %w", err)
	}
	return doc, nil
}

// fill applies doc to s through the session's change operations, so the
// same option checks apply as on the web page.
func fill(s *form.Session, doc map[string]yaml.Node) error {
	for key, node := range doc {
		f, ok := form.ParseField(key)
		if !ok {
			return fmt.Errorf("unknown field %q", key)
		}
		switch f {
		case form.FieldExistingConditions:
			var names []string
			if err := node.Decode(&names); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			cs := make([]patient.Condition, len(names))
			for i, n := range names {
				cs[i] = patient.Condition(n)
			}
			set, err := patient.NewConditionSet(cs...)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			s.ChangeConditions(set)
		case form.FieldConsentToTreatment:
			var given bool
			if err := node.Decode(&given); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			s.ChangeConsent(given)
		default:
			if node.Kind != yaml.ScalarNode {
				return fmt.Errorf("%s: want a scalar", key)
			}
			if err := s.ChangeText(f, node.Value); err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
		}
	}
	return nil
}
