package imap

// Mechanism is one member of the closed SASL mechanism enumeration the
// engine knows how to select between. Bitset membership in authmechs uses
// these as shift amounts.
type Mechanism int

const (
	MechLogin Mechanism = iota
	MechPlain
	MechCRAMMD5
	MechDigestMD5
	MechGSSAPI
	MechExternal
	MechNTLM
	mechCount
)

func (m Mechanism) String() string {
	switch m {
	case MechLogin:
		return "LOGIN"
	case MechPlain:
		return "PLAIN"
	case MechCRAMMD5:
		return "CRAM-MD5"
	case MechDigestMD5:
		return "DIGEST-MD5"
	case MechGSSAPI:
		return "GSSAPI"
	case MechExternal:
		return "EXTERNAL"
	case MechNTLM:
		return "NTLM"
	default:
		return "UNKNOWN"
	}
}

// mechanismFromToken maps an AUTH=<mech> CAPABILITY token to a Mechanism.
// Unknown tokens report ok=false and are ignored by the classifier.
func mechanismFromToken(tok string) (Mechanism, bool) {
	switch tok {
	case "LOGIN":
		return MechLogin, true
	case "PLAIN":
		return MechPlain, true
	case "CRAM-MD5":
		return MechCRAMMD5, true
	case "DIGEST-MD5":
		return MechDigestMD5, true
	case "GSSAPI":
		return MechGSSAPI, true
	case "EXTERNAL":
		return MechExternal, true
	case "NTLM":
		return MechNTLM, true
	default:
		return 0, false
	}
}

// mechBitset is the authmechs bitset: one bit per Mechanism.
type mechBitset uint32

func (b mechBitset) has(m Mechanism) bool  { return b&(1<<uint(m)) != 0 }
func (b *mechBitset) set(m Mechanism)      { *b |= 1 << uint(m) }

// selectionOrder is the fixed priority sweep resolving spec.md's Open
// Question: DIGEST-MD5 > CRAM-MD5 > NTLM > LOGIN > PLAIN, highest security
// first, GSSAPI/EXTERNAL excluded because no client-side encoder exists
// for them in internal/sasl.
var selectionOrder = []Mechanism{MechDigestMD5, MechCRAMMD5, MechNTLM, MechLogin, MechPlain}
