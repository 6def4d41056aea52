package resources

import (
	"maps"
)

type DialogMode string

const (
	DialogAdd  DialogMode = "add"
	DialogEdit DialogMode = "edit"
)

// Dialog is the edit form buffer. A zero Dialog is closed.
type Dialog struct {
	Mode     DialogMode
	RecordID int
	Values   map[string]string
}

func (d Dialog) IsOpen() bool {
	return d.Mode != ""
}

func (d Dialog) clone() Dialog {
	d.Values = maps.Clone(d.Values)
	return d
}

func newAddDialog(config ResourceConfig) Dialog {
	values := make(map[string]string, len(config.Fields))
	for _, f := range config.Fields {
		values[f.Name] = ""
	}
	return Dialog{Mode: DialogAdd, Values: values}
}

func newEditDialog(config ResourceConfig, record Record) Dialog {
	values := make(map[string]string, len(config.Fields))
	for _, f := range config.Fields {
		values[f.Name] = record.Get(f.Name)
	}
	return Dialog{Mode: DialogEdit, RecordID: record.ID, Values: values}
}

// set updates one field. Editing the primary field regenerates every derived field;
// a derived field set directly keeps the typed value until the primary changes again.
func (d *Dialog) set(config ResourceConfig, name, value string) {
	d.Values[name] = value
	if name != config.Primary().Name || config.DeriveSecondary == nil {
		return
	}
	for _, f := range config.Fields {
		if f.Derived {
			d.Values[f.Name] = config.DeriveSecondary(value)
		}
	}
}
