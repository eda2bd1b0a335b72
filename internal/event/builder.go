package event

import (
	"net/url"
	"strconv"
	"strings"
)

// FromNode converts a decoded structured-data node of type Event into a
// canonical record. pageURL is the page the node was found on; it becomes
// the record's OriginPage and the fallback detail URL. Returns nil when the
// node carries no usable title.
func FromNode(node map[string]interface{}, pageURL string) *Event {
	title := stringValue(node["name"])
	if title == "" {
		return nil
	}

	evt := &Event{
		Title:      title,
		Start:      firstString(node, "startDate", "startTime"),
		End:        firstString(node, "endDate", "endTime"),
		OriginPage: pageURL,
	}

	applyLocation(evt, node["location"])
	applyGeo(evt, node)
	evt.Price = offersPrice(node["offers"])

	evt.URL = firstString(node, "url", "@id")
	if evt.URL == "" {
		evt.URL = pageURL
	}

	evt.Source = hostOf(evt.URL)
	if evt.Source == "" {
		evt.Source = hostOf(pageURL)
	}

	return evt
}

// applyLocation fills Venue and Address from the heterogeneous schema.org
// location shapes: a Place mapping, a bare string, or nothing.
func applyLocation(evt *Event, loc interface{}) {
	switch l := loc.(type) {
	case map[string]interface{}:
		evt.Venue = stringValue(l["name"])
		switch addr := l["address"].(type) {
		case map[string]interface{}:
			if evt.Venue == "" {
				evt.Venue = stringValue(addr["name"])
			}
			evt.Address = joinAddress(addr)
		case string:
			evt.Address = strings.TrimSpace(addr)
		}
	case string:
		evt.Address = strings.TrimSpace(l)
	}
}

// joinAddress composes a PostalAddress mapping into a single comma-joined
// string, skipping empty components.
func joinAddress(addr map[string]interface{}) string {
	parts := make([]string, 0, 4)
	for _, key := range []string{"streetAddress", "addressLocality", "addressRegion", "postalCode"} {
		if v := stringValue(addr[key]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}

// applyGeo parses a nested GeoCoordinates mapping. Coordinates are all or
// nothing: if either latitude or longitude fails to parse, neither is set.
func applyGeo(evt *Event, node map[string]interface{}) {
	geo, ok := node["geo"].(map[string]interface{})
	if !ok {
		return
	}
	lat, latOK := floatValue(geo["latitude"])
	lon, lonOK := floatValue(geo["longitude"])
	if latOK && lonOK {
		evt.Lat = &lat
		evt.Lon = &lon
	}
}

// offersPrice extracts a display price from an offers field, which may be a
// single Offer mapping or a list of them. For each offer the first non-empty
// of "<currency> <amount>", bare amount, and free-text description wins.
func offersPrice(offers interface{}) string {
	switch o := offers.(type) {
	case map[string]interface{}:
		return singleOfferPrice(o)
	case []interface{}:
		for _, item := range o {
			if m, ok := item.(map[string]interface{}); ok {
				if p := singleOfferPrice(m); p != "" {
					return p
				}
			}
		}
	}
	return ""
}

func singleOfferPrice(offer map[string]interface{}) string {
	amount := stringValue(offer["price"])
	currency := stringValue(offer["priceCurrency"])
	switch {
	case amount != "" && currency != "":
		return currency + " " + amount
	case amount != "":
		return amount
	default:
		return stringValue(offer["description"])
	}
}

// firstString returns the first non-empty string value among keys.
func firstString(node map[string]interface{}, keys ...string) string {
	for _, key := range keys {
		if v := stringValue(node[key]); v != "" {
			return v
		}
	}
	return ""
}

// stringValue renders a scalar JSON value as a trimmed string. Numbers are
// formatted without a trailing ".0" for whole values, which keeps prices
// like 15 readable. Non-scalar values yield "".
func stringValue(v interface{}) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	}
	return ""
}

// floatValue parses a JSON number or numeric string.
func floatValue(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
