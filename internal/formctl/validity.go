package formctl

import (
	"strconv"
	"strings"

	"github.com/domharness/domharness/internal/domtree"
)

// Validity is the ValidityState value object exposed to scripts. Only
// the flags a control's attributes can actually trigger are computed here;
// flags with no corresponding HTML attribute in this model (patternMismatch
// needs a real regex engine, stepMismatch a numeric step) stay false unless
// a caller that has those engines available sets them directly.
type Validity struct {
	ValueMissing    bool
	TypeMismatch    bool
	PatternMismatch bool
	TooLong         bool
	TooShort        bool
	RangeUnderflow  bool
	RangeOverflow   bool
	StepMismatch    bool
	BadInput        bool
	CustomError     bool
}

// Valid reports whether every flag is false.
func (v Validity) Valid() bool {
	return !(v.ValueMissing || v.TypeMismatch || v.PatternMismatch || v.TooLong ||
		v.TooShort || v.RangeUnderflow || v.RangeOverflow || v.StepMismatch ||
		v.BadInput || v.CustomError)
}

// CheckValidity computes id's Validity from its current value and the
// HTML validation attributes present on it (required, minlength, maxlength,
// min, max, type=email|url|number).
func CheckValidity(d *domtree.Dom, id domtree.NodeId) Validity {
	Init(d, id)
	var v Validity
	value := d.CurrentValue(id)

	if d.HasAttr(id, "required") && value == "" && !IsCheckboxInput(d, id) && !IsRadioInput(d, id) {
		v.ValueMissing = true
	}
	if d.HasAttr(id, "required") && (IsCheckboxInput(d, id) || IsRadioInput(d, id)) && !d.IsChecked(id) {
		v.ValueMissing = true
	}

	if n := intAttr(d, id, "minlength"); n != nil && len([]rune(value)) < *n {
		v.TooShort = true
	}
	if n := intAttr(d, id, "maxlength"); n != nil && len([]rune(value)) > *n {
		v.TooLong = true
	}

	t := inputType(d, id)
	if value != "" {
		switch t {
		case "email":
			if !looksLikeEmail(value) {
				v.TypeMismatch = true
			}
		case "url":
			if !looksLikeURL(value) {
				v.TypeMismatch = true
			}
		case "number":
			if num, err := strconv.ParseFloat(value, 64); err != nil {
				v.BadInput = true
			} else {
				if f := floatAttr(d, id, "min"); f != nil && num < *f {
					v.RangeUnderflow = true
				}
				if f := floatAttr(d, id, "max"); f != nil && num > *f {
					v.RangeOverflow = true
				}
			}
		}
	}

	return v
}

func intAttr(d *domtree.Dom, id domtree.NodeId, name string) *int {
	s, ok := d.GetAttr(id, name)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func floatAttr(d *domtree.Dom, id domtree.NodeId, name string) *float64 {
	s, ok := d.GetAttr(id, name)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func looksLikeEmail(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && strings.Contains(s[at+1:], ".")
}

func looksLikeURL(s string) bool {
	return strings.Contains(s, "://")
}
