package imap

import "strings"

// ClassKind is the outcome of classifying one response line.
type ClassKind int

const (
	ClassNone ClassKind = iota
	ClassTaggedOK
	ClassTaggedNO
	ClassTaggedBAD
	ClassUntagged
	ClassContinuation
)

// classification is the classifier's output for a single line.
type classification struct {
	kind ClassKind
}

// statesAllowingContinuation enumerates the states in which a leading '+'
// is valid, per spec.md §4.2.
var statesAllowingContinuation = map[state]bool{
	stateAuthenticatePlain:           true,
	stateAuthenticateLogin:           true,
	stateAuthenticateLoginPasswd:     true,
	stateAuthenticateCRAMMD5:         true,
	stateAuthenticateDigestMD5:       true,
	stateAuthenticateDigestMD5Resp:   true,
	stateAuthenticateNTLM:            true,
	stateAuthenticateNTLMType2Msg:    true,
}

// classify inspects one line (already stripped of CRLF) against the
// expected tag and current phase, per spec.md §4.2.
func classify(line, resptag string, st state) classification {
	if line == "" {
		return classification{ClassNone}
	}

	switch line[0] {
	case '*':
		// "* " untagged, or bare "*" used as a SASL cancellation echo.
		if len(line) == 1 || line[1] == ' ' {
			return classification{ClassUntagged}
		}
		return classification{ClassNone}

	case '+':
		if len(line) == 1 || line[1] == ' ' {
			if statesAllowingContinuation[st] {
				return classification{ClassContinuation}
			}
		}
		return classification{ClassNone}
	}

	// Tagged: resptag bytes followed by exactly one space.
	if resptag != "" && strings.HasPrefix(line, resptag) && len(line) > len(resptag) && line[len(resptag)] == ' ' {
		rest := line[len(resptag)+1:]
		if rest == "" {
			return classification{ClassNone}
		}
		switch rest[0] {
		case 'O':
			return classification{ClassTaggedOK}
		case 'N':
			return classification{ClassTaggedNO}
		case 'B':
			return classification{ClassTaggedBAD}
		}
	}

	return classification{ClassNone}
}

// isSpaceByte matches the classifier's whitespace delimiter set: space,
// tab, CR, LF (spec.md §4.2 tie-break rule).
func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n'
}

// parseCapabilityLine scans an untagged CAPABILITY line (or the
// continuation lines CAPABILITY emits), updating the connection's
// discovered booleans and mechanism bitset in place. Token comparison is
// case-sensitive uppercase per spec.md §4.2.
func parseCapabilityLine(c *Conn, line string) {
	// Skip the leading "* " and the literal "CAPABILITY" keyword if present.
	fields := splitFields(line)
	for _, tok := range fields {
		switch tok {
		case "*", "CAPABILITY":
			continue
		case "STARTTLS":
			c.tlsSupported = true
		case "LOGINDISABLED":
			c.loginDisabled = true
		case "SASL-IR":
			c.irSupported = true
		default:
			if strings.HasPrefix(tok, "AUTH=") {
				if mech, ok := mechanismFromToken(tok[len("AUTH="):]); ok {
					c.authmechs.set(mech)
				}
			}
		}
	}
}

// splitFields splits on the classifier's whitespace set, unlike
// strings.Fields which only recognizes unicode.IsSpace (equivalent here,
// but kept explicit to document the spec's own delimiter rule).
func splitFields(s string) []string {
	var out []string
	start := -1
	for i := 0; i < len(s); i++ {
		if isSpaceByte(s[i]) {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}
