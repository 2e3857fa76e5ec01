package app

import (
	"github.com/heat-chamber/hmi/internal/chart"
	"github.com/heat-chamber/hmi/internal/form"
	"github.com/heat-chamber/hmi/internal/res"
	"github.com/heat-chamber/hmi/internal/tags"
)

// Data keys of the tracked chart tags.
const (
	KeySP      = "SP"
	KeyD       = "D"
	KeyTrigger = "TT001"
	KeySPLo    = "SP_Lo"
	KeySPHi    = "SP_Hi"
)

// Settings form items that toggle page panes.
const (
	ItemSchemeUse = "scheme_use"
	ItemChartUse  = "chart_use"
)

// seriesDefs declares the trend series in draw order.
func seriesDefs() []chart.SeriesDef {
	return []chart.SeriesDef{
		{Key: KeySPLo, Label: "SP-D", Style: chart.Style{Color: "#008000", LineWidth: 0}},
		{Key: KeySPHi, Label: "SP+D", Style: chart.Style{Color: "#008000", LineWidth: 0, Fill: 0.25, FillBetween: KeySPLo}},
		{Key: KeyTrigger, Label: "TT001", Style: chart.Style{Color: "#000000", LineWidth: 3}},
		{Key: KeySP, Label: "SP", Style: chart.Style{Color: "#FFFF00", LineWidth: 0.8}},
	}
}

// formItems declares the settings form.
func formItems() map[string]form.ItemOption {
	number := form.ItemOption{ItemType: form.ItemNumber, DataType: form.DataNumber, Allow: true}
	items := map[string]form.ItemOption{
		"START":       {ItemType: form.ItemSelect, DataType: form.DataNumber, Allow: true},
		ItemSchemeUse: {ItemType: form.ItemCheckbox, DataType: form.DataNumber, Allow: true},
		ItemChartUse:  {ItemType: form.ItemCheckbox, DataType: form.DataNumber, Allow: true},
	}
	for _, k := range []string{"SET_ID", "SP", "D", "DHI", "THI", "DLO", "TLO", "TB"} {
		items[k] = number
	}
	return items
}

// bindings declares the page tags. Suffixes: _txt text field, _bil bit lamp,
// _plo chart, _log event log only.
func bindings(t *res.Table, plot, log tags.Handler) []*tags.Binding {
	text := func(name, key string) *tags.Binding {
		return &tags.Binding{
			Name: name, DataKey: key, Node: name, Alg: tags.AlgText,
			ByRiseEdge: true, Exec: log, LogTarget: t.Text(key),
		}
	}
	lamp := func(name string, bit int, alg tags.Alg) *tags.Binding {
		return &tags.Binding{
			Name: name, DataKey: "STATES", Node: name, Alg: alg,
			ByRiseEdge: true, Bit: tags.BitIndex(bit),
		}
	}
	bitLog := func(name, node, target, list string, bit int) *tags.Binding {
		return &tags.Binding{
			Name: name, DataKey: "STATES", Node: node, Alg: algFor(node),
			ByRiseEdge: true, Bit: tags.BitIndex(bit), FromArray: t.List(list),
			Exec: log, LogTarget: t.Text(target),
		}
	}

	return []*tags.Binding{
		text("ID_txt", "SET_ID"),
		text("SP_txt", "SP"),
		{Name: "SP_plo", DataKey: KeySP, ByRiseEdge: true, Exec: plot},
		text("D_txt", "D"),
		{Name: "D_plo", DataKey: KeyD, ByRiseEdge: true, Exec: plot},
		text("DHI_txt", "DHI"),
		text("THI_txt", "THI"),
		text("DLO_txt", "DLO"),
		text("TLO_txt", "TLO"),
		text("TB_txt", "TB"),
		{Name: "TT001_txt", DataKey: KeyTrigger, Node: "TT001_txt", Alg: tags.AlgText, Div: 10, Exec: plot},
		bitLog("HS001_txt", "HS001_txt", "HS001", "HS001_List", 0),
		lamp("HS001_bil", 0, tags.AlgBitLamp),
		bitLog("HS002_txt", "HS002_txt", "HS002", "HS002_List", 1),
		lamp("HS002_bil", 1, tags.AlgBitLamp),
		lamp("H001_bil", 2, tags.AlgBitLamp),
		bitLog("H001_log", "", "H001", "OffOn_List", 2),
		lamp("C001_bil", 3, tags.AlgBitLamp),
		bitLog("C001_log", "", "C001", "OffOn_List", 3),
		lamp("LED_bil", 4, tags.AlgBitLamp),
		lamp("ALARM_bil", 5, tags.AlgBitLampBlink),
		{Name: "PLC_txt", DataKey: "PLC", Node: "PLC_txt", Alg: tags.AlgText},
		{Name: "PLC_TT_txt", DataKey: "PLC_TT", Node: "PLC_TT_txt", Alg: tags.AlgText, Div: 10},
		{Name: "STATE_txt", DataKey: "STATE", Node: "STATE_txt", Alg: tags.AlgText, ByRiseEdge: true, FromArray: t.List("STATE_List")},
		{
			Name: "STATE_log", DataKey: "STATE", ByRiseEdge: true, FromArray: t.List("STATE_ListShort"),
			Exec: log, LogTarget: t.Text("STATE"), LogColor: t.List("STATE_ListColor"),
		},
	}
}

func algFor(node string) tags.Alg {
	if node == "" {
		return tags.AlgNone
	}
	return tags.AlgText
}
