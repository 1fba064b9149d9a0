package sasl

// loginMechanism implements the (non-standard but widely deployed) SASL
// LOGIN mechanism: two continuations, username then password. Start
// returns the username as the client-first token when SASL-IR lets the
// engine skip straight to the password leg.
type loginMechanism struct {
	creds Credentials
	step  int
}

func (m *loginMechanism) Name() string { return "LOGIN" }

func (m *loginMechanism) Start() ([]byte, error) {
	m.step = 1
	return []byte(m.creds.User), nil
}

func (m *loginMechanism) Next(challenge []byte) ([]byte, error) {
	switch m.step {
	case 0:
		m.step = 1
		return []byte(m.creds.User), nil
	case 1:
		m.step = 2
		return []byte(m.creds.Pass), nil
	default:
		return nil, ErrUnexpectedChallenge
	}
}
