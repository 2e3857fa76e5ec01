// Package form converts operator settings submissions into a typed result set.
package form

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ItemType is the kind of input widget.
type ItemType string

const (
	ItemNumber   ItemType = "number"
	ItemSelect   ItemType = "select"
	ItemCheckbox ItemType = "checkbox"
)

// DataType is the type an item value is converted to.
type DataType string

const (
	DataNumber DataType = "number"
	DataString DataType = "string"
)

var (
	ErrUnknownItem   = errors.New("unknown form item")
	ErrInvalidNumber = errors.New("invalid number")
	ErrEmpty         = errors.New("empty result set")
)

// ItemOption describes one form item.
type ItemOption struct {
	ItemType ItemType
	DataType DataType
	Allow    bool
}

// Form is the set of items an operator may submit.
type Form struct {
	items map[string]ItemOption
}

// New creates a form with the given item options.
func New(items map[string]ItemOption) *Form {
	cp := make(map[string]ItemOption, len(items))
	for k, v := range items {
		cp[k] = v
	}
	return &Form{items: cp}
}

// Items returns the item names, sorted.
func (f *Form) Items() []string {
	out := make([]string, 0, len(f.items))
	for k := range f.items {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Option returns the option of name.
func (f *Form) Option(name string) (ItemOption, bool) {
	o, ok := f.items[name]
	return o, ok
}

// Resultset converts submitted values into typed data. Items that are not
// allowed are dropped; unchecked checkboxes ("", "0", "false", "off") are
// omitted; an unknown item or a malformed number fails the whole submission.
func (f *Form) Resultset(values map[string]string) (map[string]any, error) {
	res := make(map[string]any, len(values))
	for name, raw := range values {
		opt, ok := f.items[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownItem, name)
		}
		if !opt.Allow {
			continue
		}

		raw = strings.TrimSpace(raw)
		if opt.ItemType == ItemCheckbox {
			if !checked(raw) {
				continue
			}
			raw = "1"
		}

		v, err := convert(opt.DataType, raw)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		res[name] = v
	}
	if len(res) == 0 {
		return nil, ErrEmpty
	}
	return res, nil
}

func checked(raw string) bool {
	switch strings.ToLower(raw) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

func convert(dt DataType, raw string) (any, error) {
	if dt != DataNumber {
		return raw, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidNumber, raw)
	}
	return f, nil
}

// Has reports whether res carries a numeric value for name, which is how
// checkbox toggles are read back.
func Has(res map[string]any, name string) bool {
	_, ok := res[name].(float64)
	return ok
}
