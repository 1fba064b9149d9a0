package sasl

import (
	"crypto/hmac"
	"crypto/md5"
	"encoding/binary"
	"strings"
)

// ntlmMechanism builds the NTLM Type 1 (negotiate) and Type 3
// (authenticate) messages around a server Type 2 (challenge) message.
// spec.md §1 puts SASL credential *encoding* out of core scope and singles
// out "NTLM payload construction" by name; this implementation produces a
// structurally valid Type 1/Type 3 pair so the engine's priority sweep has
// a real mechanism to drive end to end, but substitutes an HMAC-MD5 keyed
// hash for the classic NTLM/LM DES-based response — real NTLMv1/v2 hash
// computation is exactly the out-of-scope piece spec.md names.
type ntlmMechanism struct {
	creds Credentials
	step  int
}

func newNTLMMechanism(creds Credentials) *ntlmMechanism {
	return &ntlmMechanism{creds: creds}
}

func (m *ntlmMechanism) Name() string { return "NTLM" }

func (m *ntlmMechanism) Start() ([]byte, error) {
	m.step = 1
	return ntlmType1(m.domain()), nil
}

func (m *ntlmMechanism) Next(challenge []byte) ([]byte, error) {
	switch m.step {
	case 0:
		m.step = 1
		return ntlmType1(m.domain()), nil
	case 1:
		m.step = 2
		return ntlmType3(challenge, m.domain(), m.user(), m.creds.Pass), nil
	default:
		return nil, ErrUnexpectedChallenge
	}
}

func (m *ntlmMechanism) domain() string {
	if i := strings.IndexByte(m.creds.User, '\\'); i >= 0 {
		return m.creds.User[:i]
	}
	return ""
}

func (m *ntlmMechanism) user() string {
	if i := strings.IndexByte(m.creds.User, '\\'); i >= 0 {
		return m.creds.User[i+1:]
	}
	return m.creds.User
}

const ntlmSignature = "NTLMSSP\x00"

// ntlmType1 builds the negotiate message: signature, type, flags, and a
// pair of (empty) domain/workstation security buffers.
func ntlmType1(domain string) []byte {
	flags := uint32(0x00000001 | 0x00000002 | 0x00000200)
	buf := make([]byte, 0, 32)
	buf = append(buf, ntlmSignature...)
	buf = appendUint32(buf, 1)
	buf = appendUint32(buf, flags)
	buf = appendSecurityBuffer(buf, 0, 0, uint32(len(buf)+16))
	buf = appendSecurityBuffer(buf, 0, 0, uint32(len(buf)+8))
	_ = domain
	return buf
}

// ntlmType3 builds the authenticate message carrying the (simplified)
// challenge response and the plaintext-derived domain/user/workstation
// fields as UTF-16LE security buffers.
func ntlmType3(type2Challenge []byte, domain, user, pass string) []byte {
	response := ntlmResponse(type2Challenge, pass)

	domain16 := toUTF16LE(domain)
	user16 := toUTF16LE(user)

	header := 64 // fixed header size before the variable buffers
	lmOff := header
	ntOff := lmOff + len(response)
	domOff := ntOff + len(response)
	userOff := domOff + len(domain16)

	buf := make([]byte, 0, userOff+len(user16))
	buf = append(buf, ntlmSignature...)
	buf = appendUint32(buf, 3)
	buf = appendSecurityBuffer(buf, uint16(len(response)), uint16(len(response)), uint32(lmOff))
	buf = appendSecurityBuffer(buf, uint16(len(response)), uint16(len(response)), uint32(ntOff))
	buf = appendSecurityBuffer(buf, uint16(len(domain16)), uint16(len(domain16)), uint32(domOff))
	buf = appendSecurityBuffer(buf, uint16(len(user16)), uint16(len(user16)), uint32(userOff))
	buf = appendSecurityBuffer(buf, 0, 0, uint32(userOff+len(user16)))
	buf = appendSecurityBuffer(buf, 0, 0, uint32(userOff+len(user16)))
	buf = appendUint32(buf, 0x00008201)

	buf = append(buf, response...) // LM response
	buf = append(buf, response...) // NT response (same simplified value)
	buf = append(buf, domain16...)
	buf = append(buf, user16...)
	return buf
}

// ntlmResponse substitutes HMAC-MD5(password-derived key, challenge) for
// the real NTLM/LM DES response; see the package doc comment above.
func ntlmResponse(challenge []byte, pass string) []byte {
	mac := hmac.New(md5.New, toUTF16LE(pass))
	mac.Write(challenge)
	return mac.Sum(nil)
}

func appendUint32(b []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendUint16(b []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(b, tmp[:]...)
}

func appendSecurityBuffer(b []byte, length, allocated uint16, offset uint32) []byte {
	b = appendUint16(b, length)
	b = appendUint16(b, allocated)
	b = appendUint32(b, offset)
	return b
}

func toUTF16LE(s string) []byte {
	out := make([]byte, 0, len(s)*2)
	for _, r := range s {
		out = appendUint16(out, uint16(r))
	}
	return out
}
