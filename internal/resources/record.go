package resources

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/pkg/errors"
	"strconv"
)

// Record is one row of a reference-data collection. ID is assigned by the server.
type Record struct {
	ID     int
	Values map[string]string
}

func (r Record) Get(field string) string {
	return r.Values[field]
}

func (r *Record) UnmarshalJSON(data []byte) error {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var raw map[string]any
	if err := decoder.Decode(&raw); err != nil {
		return err
	}

	number, ok := raw["id"].(json.Number)
	if !ok {
		return errors.Errorf("record without numeric id: %s", string(data))
	}
	id, err := strconv.Atoi(number.String())
	if err != nil {
		return errors.Wrap(err, "record id")
	}

	r.ID = id
	r.Values = make(map[string]string, len(raw)-1)
	for key, value := range raw {
		if key == "id" {
			continue
		}
		r.Values[key] = stringify(value)
	}
	return nil
}

func stringify(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(encoded)
	}
}
