package form

import (
	"errors"
	"testing"
)

func testForm() *Form {
	return New(map[string]ItemOption{
		"SP":         {ItemType: ItemNumber, DataType: DataNumber, Allow: true},
		"START":      {ItemType: ItemSelect, DataType: DataNumber, Allow: true},
		"chart_use":  {ItemType: ItemCheckbox, DataType: DataNumber, Allow: true},
		"scheme_use": {ItemType: ItemCheckbox, DataType: DataNumber, Allow: true},
		"LOCKED":     {ItemType: ItemNumber, DataType: DataNumber, Allow: false},
	})
}

func TestResultset(t *testing.T) {
	res, err := testForm().Resultset(map[string]string{
		"SP":         " 32.5 ",
		"START":      "1",
		"chart_use":  "on",
		"scheme_use": "",
		"LOCKED":     "7",
	})
	if err != nil {
		t.Fatalf("Resultset() failed: %v", err)
	}

	if res["SP"] != 32.5 {
		t.Errorf("SP = %v", res["SP"])
	}
	if res["START"] != 1.0 {
		t.Errorf("START = %v", res["START"])
	}
	if !Has(res, "chart_use") || res["chart_use"] != 1.0 {
		t.Errorf("chart_use = %v", res["chart_use"])
	}
	if Has(res, "scheme_use") {
		t.Error("unchecked scheme_use should be omitted")
	}
	if _, ok := res["LOCKED"]; ok {
		t.Error("disallowed item should be dropped")
	}
}

func TestResultsetErrors(t *testing.T) {
	f := testForm()

	if _, err := f.Resultset(map[string]string{"XX": "1"}); !errors.Is(err, ErrUnknownItem) {
		t.Errorf("unknown item: err = %v", err)
	}
	if _, err := f.Resultset(map[string]string{"SP": "hot"}); !errors.Is(err, ErrInvalidNumber) {
		t.Errorf("bad number: err = %v", err)
	}
	if _, err := f.Resultset(map[string]string{"scheme_use": "off"}); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty: err = %v", err)
	}
}

func TestItems(t *testing.T) {
	items := testForm().Items()
	if len(items) != 5 || items[0] != "LOCKED" {
		t.Errorf("Items() = %v", items)
	}
	if _, ok := testForm().Option("SP"); !ok {
		t.Error("Option(SP) missing")
	}
}
