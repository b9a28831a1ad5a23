package abcookie

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
)

var errPayloadShape = errors.New("payload shape invalid")

// encodePayload renders the payload as URL-encoded compact JSON, the opaque
// form carried in the cookie value.
func encodePayload(p VariantPayload) (string, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return url.QueryEscape(string(raw)), nil
}

// decodePayload reverses encodePayload. Unknown JSON fields and missing
// required fields are rejected as malformed rather than coerced: the
// payload is a tagged struct, not an open map. Standard JSON whitespace
// variance is tolerated.
func decodePayload(value string) (VariantPayload, error) {
	var p VariantPayload

	raw, err := url.QueryUnescape(value)
	if err != nil {
		return p, errPayloadShape
	}

	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil {
		return p, errPayloadShape
	}
	// Trailing garbage after the JSON document is not a payload.
	if dec.More() {
		return p, errPayloadShape
	}

	if p.Variant == "" || p.Signature == "" || p.ID == "" || p.IssuedAtMs <= 0 {
		return p, errPayloadShape
	}

	return p, nil
}

// cookieName derives the cookie name for an experiment: the bare prefix for
// the default experiment, "{prefix}_{experimentID}" otherwise.
func (m *Manager) cookieName(experimentID string) string {
	if experimentID == "" || experimentID == DefaultExperiment {
		return m.config.Cookie.NamePrefix
	}
	return m.config.Cookie.NamePrefix + "_" + experimentID
}

// experimentKey reverses cookieName. The second result reports whether the
// cookie name belongs to this manager's namespace at all.
func (m *Manager) experimentKey(cookieName string) (string, bool) {
	prefix := m.config.Cookie.NamePrefix
	if cookieName == prefix {
		return DefaultExperiment, true
	}
	if rest, ok := strings.CutPrefix(cookieName, prefix+"_"); ok && rest != "" {
		return rest, true
	}
	return "", false
}

// validExperimentID restricts experiment identifiers to characters that
// survive embedding in a cookie name unescaped.
func validExperimentID(experimentID string) bool {
	for i := 0; i < len(experimentID); i++ {
		b := experimentID[i]
		switch {
		case b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b >= '0' && b <= '9':
		case b == '-' || b == '.' || b == '_':
		default:
			return false
		}
	}
	return true
}
