package sasl

import (
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

// digestMD5Mechanism implements the client half of RFC 2831 DIGEST-MD5:
// one challenge carrying realm/nonce/qop, one digest-response, a final
// empty continuation acknowledging the server's rspauth value. Nonce
// state (cnonce, nonce-count) lives for exactly one authentication
// session, per spec.md §5.
type digestMD5Mechanism struct {
	creds Credentials
	step  int
}

func newDigestMD5Mechanism(creds Credentials) *digestMD5Mechanism {
	return &digestMD5Mechanism{creds: creds}
}

func (m *digestMD5Mechanism) Name() string { return "DIGEST-MD5" }

func (m *digestMD5Mechanism) Start() ([]byte, error) { return nil, nil }

func (m *digestMD5Mechanism) Next(challenge []byte) ([]byte, error) {
	switch m.step {
	case 0:
		m.step = 1
		return m.digestResponse(challenge)
	case 1:
		m.step = 2
		return []byte{}, nil
	default:
		return nil, ErrUnexpectedChallenge
	}
}

func (m *digestMD5Mechanism) digestResponse(challenge []byte) ([]byte, error) {
	attrs := parseDigestChallenge(string(challenge))

	realm := attrs["realm"]
	if realm == "" {
		realm = m.creds.Host
	}
	nonce := attrs["nonce"]
	qop := "auth"
	if v := attrs["qop"]; v != "" {
		qop = strings.Split(v, ",")[0]
	}

	cnonce, err := randomCnonce()
	if err != nil {
		return nil, fmt.Errorf("sasl: digest-md5 cnonce: %w", err)
	}
	nc := "00000001"
	digestURI := fmt.Sprintf("imap/%s", m.creds.Host)

	response := digestResponseValue(m.creds.User, realm, m.creds.Pass, nonce, cnonce, nc, digestURI, qop)

	var b strings.Builder
	fmt.Fprintf(&b, `username="%s",realm="%s",nonce="%s",cnonce="%s",nc=%s,qop=%s,digest-uri="%s",response=%s`,
		m.creds.User, realm, nonce, cnonce, nc, qop, digestURI, response)
	if authzid := m.creds.Authzid; authzid != "" {
		fmt.Fprintf(&b, `,authzid="%s"`, authzid)
	}
	return []byte(b.String()), nil
}

// digestResponseValue computes RFC 2831 §2.1.2.1's "response-value" for
// qop=auth (no integrity/confidentiality layer — this client only reads a
// single FETCH response, it never needs a negotiated security layer).
func digestResponseValue(user, realm, pass, nonce, cnonce, nc, digestURI, qop string) string {
	h := func(s string) []byte {
		sum := md5.Sum([]byte(s))
		return sum[:]
	}
	hHex := func(b []byte) string { return hex.EncodeToString(b) }

	// RFC 2831: A1 = H(user:realm:pass) ":" nonce ":" cnonce [":" authzid]
	a1 := fmt.Sprintf("%s:%s:%s", string(h(fmt.Sprintf("%s:%s:%s", user, realm, pass))), nonce, cnonce)
	ha1 := hHex(h(a1))

	a2 := "AUTHENTICATE:" + digestURI
	ha2 := hHex(h(a2))

	kd := fmt.Sprintf("%s:%s:%s:%s:%s:%s", ha1, nonce, nc, cnonce, qop, ha2)
	return hHex(h(kd))
}

func parseDigestChallenge(s string) map[string]string {
	out := map[string]string{}
	for _, part := range splitDigestAttrs(s) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		key := strings.TrimSpace(kv[0])
		val := strings.Trim(strings.TrimSpace(kv[1]), `"`)
		out[key] = val
	}
	return out
}

// splitDigestAttrs splits a comma-separated attribute list while
// respecting double-quoted values that may themselves contain commas.
func splitDigestAttrs(s string) []string {
	var out []string
	inQuotes := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuotes = !inQuotes
		case ',':
			if !inQuotes {
				out = append(out, s[start:i])
				start = i + 1
			}
		}
	}
	out = append(out, s[start:])
	return out
}

func randomCnonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
