package devhunt

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is the paginated list envelope used by search endpoints.
type Page struct {
	Results  []json.RawMessage `json:"results"`
	Count    int               `json:"count"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
}

func (p Page) HasNext() bool {
	return p.Next != nil && *p.Next != ""
}

// decodeList accepts either a bare JSON array or a Page envelope.
func decodeList(body []byte) (Page, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return Page{}, fmt.Errorf("empty list response")
	}

	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page{}, fmt.Errorf("error decoding JSON response: %v", err)
		}
		return Page{Results: items, Count: len(items)}, nil
	}

	var page Page
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return Page{}, fmt.Errorf("error decoding JSON response: %v", err)
	}
	if page.Results == nil {
		page.Results = []json.RawMessage{}
	}
	return page, nil
}
