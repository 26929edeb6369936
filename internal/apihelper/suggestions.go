package apihelper

// HeaderSuggestion is a commonly used request header offered to the frontend.
type HeaderSuggestion struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

var commonHeaders = []HeaderSuggestion{
	{Key: "Accept", Value: "application/json"},
	{Key: "Accept", Value: "application/xml"},
	{Key: "Accept-Language", Value: "en-US"},
	{Key: "Cache-Control", Value: "no-cache"},
	{Key: "Content-Type", Value: "application/json"},
	{Key: "User-Agent", Value: "SamvadAPIHelper/1.0"},
	{Key: "X-Requested-With", Value: "XMLHttpRequest"},
}

// HeaderSuggestions returns a copy of the common header list.
func HeaderSuggestions() []HeaderSuggestion {
	out := make([]HeaderSuggestion, len(commonHeaders))
	copy(out, commonHeaders)
	return out
}
