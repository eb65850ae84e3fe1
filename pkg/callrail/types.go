package callrail

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
)

// Call is one CallRail call record. Only requested fields are populated.
type Call struct {
	ID                  string `json:"id"`
	Answered            bool   `json:"answered"`
	TrackingPhoneNumber string `json:"tracking_phone_number"`
	Source              string `json:"source"`
	StartTime           string `json:"start_time"`
	Duration            int    `json:"duration"`
	CustomerName        string `json:"customer_name"`
	CustomerPhoneNumber string `json:"customer_phone_number"`
	CustomerCity        string `json:"customer_city"`
	CustomerState       string `json:"customer_state"`
	CustomerCountry     string `json:"customer_country"`
	DeviceType          string `json:"device_type"`
	Keywords            string `json:"keywords"`
	ReferrerDomain      string `json:"referrer_domain"`
	Medium              string `json:"medium"`
	LandingPageURL      string `json:"landing_page_url"`
	Campaign            string `json:"campaign"`
	Value               Flex   `json:"value"`
	Recording           string `json:"recording"`
	AgentEmail          string `json:"agent_email"`
	FirstCall           bool   `json:"first_call"`
	Note                string `json:"note"`
}

// Website is the landing page without its query string.
func (c Call) Website() string {
	u, _, _ := strings.Cut(c.LandingPageURL, "?")
	return u
}

// Flex decodes a field the API sends as a string, a number or null.
type Flex string

// UnmarshalJSON implements json.Unmarshaler.
func (f *Flex) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return eris.Wrap(err, "callrail: decode value")
		}
		*f = Flex(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return eris.Wrapf(err, "callrail: decode value %s", string(b))
	}
	*f = Flex(n.String())
	return nil
}

// String returns the value text.
func (f Flex) String() string { return string(f) }
