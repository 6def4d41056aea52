package notifications

import "fmt"

type Filter string

const (
	FilterAll       Filter = "all"
	FilterResponses Filter = "responses"
	FilterMatches   Filter = "matches"
)

func ParseFilter(value string) (Filter, error) {
	switch Filter(value) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterResponses:
		return FilterResponses, nil
	case FilterMatches:
		return FilterMatches, nil
	default:
		return "", fmt.Errorf("unknown notification filter: %q", value)
	}
}

func (f Filter) accepts(message Message) bool {
	switch f {
	case FilterResponses:
		return IsResponse(message.Text)
	case FilterMatches:
		return IsMatch(message.Text)
	default:
		return true
	}
}
