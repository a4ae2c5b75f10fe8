// internal/form/renderer.go
//
// Intake – Forms subsystem: HTML renderer.
//
// Context
//   Converts a session State into safe, accessible HTML markup for the
//   server-rendered intake page.  The markup mirrors what the session knows:
//   current values are pre-filled, and each field's error is written only when
//   State.ShowError allows it (touched, or a submission in flight).
//
// Workflow
//   •  Render walks Fields() in display order and writes each via writeField.
//   •  Required, min, max, and placeholder attributes are attached where
//      relevant.  Select and checkbox options come from the closed sets in
//      the patient package.
//   •  The caller supplies a CSRF token (see csrf.go), embedded as a hidden
//      <input>.
//   •  The caller receives template.HTML so the surrounding page template does
//      not double-escape the markup.
//
// Style
//   Output HTML is deliberately plain, no framework classes.  Each input gets
//   id="fld-{name}" and is wrapped in <div class="form-field" data-field="…">
//   so /intake/intake.js can post blur events per field.
//
//------------------------------------------------------------------------------

package form

import (
	"bytes"
	"html"
	"html/template"
	"strconv"

	"github.com/yanizio/intake/internal/patient"
)

// RenderOptions bundles the request-scoped parts of the markup.
type RenderOptions struct {
	// Action is the form's POST target, e.g. "/intake".
	Action string
	// CSRFToken is embedded as the hidden csrf_token input.
	CSRFToken string
}

// ShowError mirrors Session.ShouldShowError for a State copy.
func (st State) ShowError(f Field) bool { return st.Touched.Is(f) || st.Submitting }

// Render returns the HTML markup of the intake form for st.
func Render(st State, opts RenderOptions) template.HTML {
	var buf bytes.Buffer

	buf.WriteString(`<form class="intake-form" method="post" action="` + html.EscapeString(opts.Action) + `" novalidate>` + "\n")

	if st.Errors.Submit != "" {
		buf.WriteString(`<div class="form-error" role="alert">` + html.EscapeString(st.Errors.Submit) + `</div>` + "\n")
	}

	for _, f := range Fields() {
		writeField(&buf, st, f)
	}

	buf.WriteString(`<input type="hidden" name="csrf_token" value="` + html.EscapeString(opts.CSRFToken) + `">` + "\n")

	if st.Submitting {
		buf.WriteString(`<button type="submit" disabled>Submitting...</button>` + "\n")
	} else {
		buf.WriteString(`<button type="submit">Submit</button>` + "\n")
	}
	buf.WriteString(`</form>`)
	return template.HTML(buf.String())
}

// inputSpec describes the <input> rendering of a plain field.
type inputSpec struct {
	typ          string
	autocomplete string
	min, max     int
}

var inputs = map[Field]inputSpec{
	FieldPatientName:           {typ: "text", autocomplete: "name"},
	FieldEmergencyContactName:  {typ: "text", autocomplete: "name"},
	FieldAge:                   {typ: "number", min: patient.MinAge, max: patient.MaxAge},
	FieldPhone:                 {typ: "tel", autocomplete: "tel"},
	FieldEmergencyContactPhone: {typ: "tel"},
	FieldEmail:                 {typ: "email", autocomplete: "email"},
	FieldInsuranceProvider:     {typ: "text"},
	FieldInsuranceIssuedYear:   {typ: "number", min: patient.MinIssuedYear, max: patient.MaxIssuedYear},
	FieldMemberID:              {typ: "text"},
}

// writeField emits one field wrapped in <div class="form-field">.
func writeField(buf *bytes.Buffer, st State, f Field) {
	name := html.EscapeString(f.String())
	id := "fld-" + name
	msg := ""
	if st.ShowError(f) {
		msg = st.Errors.Get(f)
	}
	invalid := ""
	if msg != "" {
		invalid = ` aria-invalid="true"`
	}
	required := ""
	if f != FieldExistingConditions {
		required = ` required`
	}

	buf.WriteString(`<div class="form-field" data-field="` + name + `">` + "\n")

	switch f {
	case FieldGender, FieldBloodGroup:
		writeLabel(buf, id, f)
		buf.WriteString(`<select id="` + id + `" name="` + name + `"` + required + invalid + `>` + "\n")
		buf.WriteString(`<option value="">Select...</option>` + "\n")
		cur := st.Values.Text(f)
		for _, o := range selectOptions(f) {
			sel := ""
			if o.value == cur {
				sel = ` selected`
			}
			buf.WriteString(`<option value="` + html.EscapeString(o.value) + `"` + sel + `>` + html.EscapeString(o.label) + `</option>` + "\n")
		}
		buf.WriteString(`</select>` + "\n")

	case FieldSymptoms:
		writeLabel(buf, id, f)
		buf.WriteString(`<textarea id="` + id + `" name="` + name + `" rows="4"` + required + invalid +
			` minlength="` + strconv.Itoa(patient.MinSymptomsLength) + `"` +
			` placeholder="Please describe your symptoms in detail...">`)
		buf.WriteString(html.EscapeString(st.Values.Symptoms))
		buf.WriteString(`</textarea>` + "\n")

	case FieldExistingConditions:
		buf.WriteString(`<fieldset id="` + id + `"><legend>` + html.EscapeString(f.Label()) + `</legend>` + "\n")
		for i, c := range patient.Conditions {
			cid := id + "-" + strconv.Itoa(i)
			checked := ""
			if st.Values.ExistingConditions.Has(c) {
				checked = ` checked`
			}
			buf.WriteString(`<div class="checkbox-option">` + "\n")
			buf.WriteString(`<input id="` + cid + `" name="` + name + `" type="checkbox" value="` + html.EscapeString(string(c)) + `"` + checked + `>` + "\n")
			buf.WriteString(`<label for="` + cid + `">` + html.EscapeString(c.Label()) + `</label>` + "\n")
			buf.WriteString(`</div>` + "\n")
		}
		buf.WriteString(`</fieldset>` + "\n")

	case FieldConsentToTreatment:
		checked := ""
		if st.Values.ConsentToTreatment {
			checked = ` checked`
		}
		buf.WriteString(`<input id="` + id + `" name="` + name + `" type="checkbox" value="true"` + checked + required + invalid + `>` + "\n")
		writeLabel(buf, id, f)

	default:
		in := inputs[f]
		writeLabel(buf, id, f)
		buf.WriteString(`<input id="` + id + `" name="` + name + `" type="` + in.typ + `"`)
		if in.autocomplete != "" {
			buf.WriteString(` autocomplete="` + in.autocomplete + `"`)
		}
		if in.max > 0 {
			buf.WriteString(` min="` + strconv.Itoa(in.min) + `" max="` + strconv.Itoa(in.max) + `"`)
		}
		buf.WriteString(required + invalid)
		if v := st.Values.Text(f); v != "" {
			buf.WriteString(` value="` + html.EscapeString(v) + `"`)
		}
		buf.WriteString(`>` + "\n")
	}

	// The span is always present so client script can fill it after a blur.
	buf.WriteString(`<span class="error" id="err-` + name + `" aria-live="polite">` + html.EscapeString(msg) + `</span>` + "\n")
	buf.WriteString(`</div>` + "\n")
}

func writeLabel(buf *bytes.Buffer, id string, f Field) {
	buf.WriteString(`<label for="` + id + `">` + html.EscapeString(f.Label()) + `</label>` + "\n")
}

type option struct{ value, label string }

// selectOptions returns the closed option set of a select field.
func selectOptions(f Field) []option {
	var out []option
	switch f {
	case FieldGender:
		for _, g := range patient.Genders {
			out = append(out, option{string(g), g.Label()})
		}
	case FieldBloodGroup:
		for _, b := range patient.BloodGroups {
			out = append(out, option{string(b), string(b)})
		}
	}
	return out
}
