// Package res holds the localized display strings of the pro1003 page.
package res

import (
	"sort"
	"strconv"
	"strings"
)

// None is the placeholder shown for unknown keys and empty values.
const None = "---"

// Table is the string set of one locale.
type Table struct {
	Strings map[string]string
	// Lists map an integer tag value to display text (e.g. STATE_List).
	Lists map[string]map[int]string
	// ConnStates is indexed by the link state ordinal.
	ConnStates []string
}

var tables = map[string]*Table{
	"ru": {
		Strings: map[string]string{
			"SrvConnErr":      "Ошибка! Нет подключения к серверу {0}!",
			"NoDataErr":       "Ошибка! Нет данных длительное время! Проверьте связь с сервером {0}.",
			"WsNotSupportErr": "Ошибка! Ваш браузер не поддерживает работу с web-сокетами!",
			"Connect":         "подключиться",
			"Disconnect":      "отключиться",
			"WebSocket":       "WebSocket",
			"WatchDog":        "WatchDog",
			"Connected":       "соединение установлено",
			"Disconnected":    "соединение сброшено",
			"AutoReconnect":   "попытка восстановления соединения...",
			"None":            None,
			"HS001":           "HS-001",
			"HS002":           "HS-002",
			"H001":            "H-001",
			"C001":            "C-001",
			"SET_ID":          "ID",
			"SP":              "SP",
			"D":               "D",
			"DHI":             "DHi",
			"THI":             "THi",
			"DLO":             "DLo",
			"TLO":             "TLo",
			"TB":              "Tb",
			"STATE":           "КОНТУР УПРАВЛЕНИЯ",
			"ValueAxis":       "Значение канала",
		},
		Lists: map[string]map[int]string{
			"HS001_List":      {0: "СТОП", 1: "ПУСК"},
			"HS002_List":      {0: "без продувки", 1: "с продувкой"},
			"OffOn_List":      {0: "ВЫКЛ", 1: "ВКЛ"},
			"STATE_List":      {0: "ВЫКЛ", 1: "ПРОДУВКА", 2: "РАБОТА", 3: "ОБРЫВ КОНТУРА УПРАВЛЕНИЯ", 4: "ЗАКЛИНИВАНИЕ КОНТУРА УПРАВЛЕНИЯ"},
			"STATE_ListShort": {0: "ВЫКЛ", 1: "ПРОДУВКА", 2: "РАБОТА", 3: "ОБРЫВ", 4: "ЗАКЛИНИВАНИЕ"},
			"STATE_ListColor": {1: "blue", 2: "green", 3: "red", 4: "red"},
		},
		ConnStates: []string{"подключение...", "подключено", "отключение...", "отключено", "отключено"},
	},
	"en": {
		Strings: map[string]string{
			"SrvConnErr":      "Error! No connection to server {0}!",
			"NoDataErr":       "Error! No data for a long time! Check the link to server {0}.",
			"WsNotSupportErr": "Error! WebSocket transport is not available!",
			"Connect":         "connect",
			"Disconnect":      "disconnect",
			"WebSocket":       "WebSocket",
			"WatchDog":        "WatchDog",
			"Connected":       "connection established",
			"Disconnected":    "connection lost",
			"AutoReconnect":   "trying to reconnect...",
			"None":            None,
			"HS001":           "HS-001",
			"HS002":           "HS-002",
			"H001":            "H-001",
			"C001":            "C-001",
			"SET_ID":          "ID",
			"SP":              "SP",
			"D":               "D",
			"DHI":             "DHi",
			"THI":             "THi",
			"DLO":             "DLo",
			"TLO":             "TLo",
			"TB":              "Tb",
			"STATE":           "CONTROL LOOP",
			"ValueAxis":       "Channel value",
		},
		Lists: map[string]map[int]string{
			"HS001_List":      {0: "STOP", 1: "START"},
			"HS002_List":      {0: "no purge", 1: "with purge"},
			"OffOn_List":      {0: "OFF", 1: "ON"},
			"STATE_List":      {0: "OFF", 1: "PURGE", 2: "RUN", 3: "CONTROL LOOP BREAK", 4: "CONTROL LOOP JAM"},
			"STATE_ListShort": {0: "OFF", 1: "PURGE", 2: "RUN", 3: "BREAK", 4: "JAM"},
			"STATE_ListColor": {1: "blue", 2: "green", 3: "red", 4: "red"},
		},
		ConnStates: []string{"connecting...", "connected", "disconnecting...", "disconnected", "disconnected"},
	},
}

// DefaultLang is used when a requested locale is missing.
const DefaultLang = "ru"

// Lookup returns the table for lang, falling back to DefaultLang.
func Lookup(lang string) *Table {
	if t, ok := tables[lang]; ok {
		return t
	}
	return tables[DefaultLang]
}

// Langs returns the available locales, sorted.
func Langs() []string {
	out := make([]string, 0, len(tables))
	for k := range tables {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Text returns the string for key, or None.
func (t *Table) Text(key string) string {
	if s, ok := t.Strings[key]; ok {
		return s
	}
	return None
}

// Format returns Text(key) with {0}, {1}, ... replaced by args.
func (t *Table) Format(key string, args ...string) string {
	s := t.Text(key)
	for i, a := range args {
		s = strings.ReplaceAll(s, "{"+strconv.Itoa(i)+"}", a)
	}
	return s
}

// List returns the named list, or nil.
func (t *Table) List(name string) map[int]string {
	return t.Lists[name]
}

// Item returns list[name][idx] and whether it exists.
func (t *Table) Item(name string, idx int) (string, bool) {
	s, ok := t.Lists[name][idx]
	return s, ok
}

// ConnState returns the label of link state ordinal n, or None.
func (t *Table) ConnState(n int) string {
	if n < 0 || n >= len(t.ConnStates) {
		return None
	}
	return t.ConnStates[n]
}
