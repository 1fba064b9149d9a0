package sasl

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// cramMD5Mechanism implements RFC 2195 CRAM-MD5: one server challenge, one
// client response of "user hex(hmac-md5(pass, challenge))". It never has
// a client-first token, so Start always returns (nil, nil).
type cramMD5Mechanism struct {
	creds Credentials
	done  bool
}

func (m *cramMD5Mechanism) Name() string { return "CRAM-MD5" }

func (m *cramMD5Mechanism) Start() ([]byte, error) { return nil, nil }

func (m *cramMD5Mechanism) Next(challenge []byte) ([]byte, error) {
	if m.done {
		return nil, ErrUnexpectedChallenge
	}
	m.done = true

	mac := hmac.New(md5.New, []byte(m.creds.Pass))
	mac.Write(challenge)
	digest := hex.EncodeToString(mac.Sum(nil))

	return []byte(fmt.Sprintf("%s %s", m.creds.User, digest)), nil
}
