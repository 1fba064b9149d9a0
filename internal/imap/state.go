package imap

// state is the protocol engine's phase, per spec.md §4.5.
type state int

const (
	stateServerGreet state = iota
	stateCapability
	stateStartTLS
	stateUpgradeTLS
	stateAuthenticatePlain
	stateAuthenticateLogin
	stateAuthenticateLoginPasswd
	stateAuthenticateCRAMMD5
	stateAuthenticateDigestMD5
	stateAuthenticateDigestMD5Resp
	stateAuthenticateNTLM
	stateAuthenticateNTLMType2Msg
	stateAuthenticate
	stateLogin
	stateSelect
	stateFetch
	stateLogout
	stateStop
)

func (s state) String() string {
	switch s {
	case stateServerGreet:
		return "SERVERGREET"
	case stateCapability:
		return "CAPABILITY"
	case stateStartTLS:
		return "STARTTLS"
	case stateUpgradeTLS:
		return "UPGRADETLS"
	case stateAuthenticatePlain:
		return "AUTHENTICATE_PLAIN"
	case stateAuthenticateLogin:
		return "AUTHENTICATE_LOGIN"
	case stateAuthenticateLoginPasswd:
		return "AUTHENTICATE_LOGIN_PASSWD"
	case stateAuthenticateCRAMMD5:
		return "AUTHENTICATE_CRAMMD5"
	case stateAuthenticateDigestMD5:
		return "AUTHENTICATE_DIGESTMD5"
	case stateAuthenticateDigestMD5Resp:
		return "AUTHENTICATE_DIGESTMD5_RESP"
	case stateAuthenticateNTLM:
		return "AUTHENTICATE_NTLM"
	case stateAuthenticateNTLMType2Msg:
		return "AUTHENTICATE_NTLM_TYPE2MSG"
	case stateAuthenticate:
		return "AUTHENTICATE"
	case stateLogin:
		return "LOGIN"
	case stateSelect:
		return "SELECT"
	case stateFetch:
		return "FETCH"
	case stateLogout:
		return "LOGOUT"
	case stateStop:
		return "STOP"
	default:
		return "UNKNOWN"
	}
}
