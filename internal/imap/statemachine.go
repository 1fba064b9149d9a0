package imap

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"imapfetch/internal/sasl"
	"imapfetch/internal/transport"
)

// selectionOrder is consulted in enterAuthSelection and resolves spec.md's
// open question on SASL mechanism priority: strongest-first.
// (declared in mechanism.go)

// Step drives the engine forward by one non-blocking increment: flush any
// queued output, poll an in-flight TLS handshake, read whatever bytes are
// currently available, and process as many complete lines as those bytes
// contain. It never blocks on the network. done is true once the engine has
// reached STOP (the current phase is finished, successfully or not).
func (c *Conn) Step() (done bool, err error) {
	if c.sendErr != nil {
		return c.fail(transportErr(c.sendErr))
	}

	if c.pendingBodyBytes > 0 {
		return c.stepRawBody()
	}

	if c.state == stateStop {
		return true, nil
	}

	if !c.timeoutAt.IsZero() && time.Now().After(c.timeoutAt) {
		return c.fail(timeoutErr())
	}

	if err := c.framer.flush(c.transport.Write); err != nil {
		return c.fail(transportErr(err))
	}
	if c.framer.sendLeft > 0 {
		return false, nil
	}

	if c.state == stateUpgradeTLS {
		handshakeDone, herr := c.transport.HandshakeDone()
		if !handshakeDone {
			return false, nil
		}
		if herr != nil {
			return c.fail(tlsErr(herr))
		}
		c.ssldone = true
		c.sendCapability()
		return false, nil
	}

	buf := make([]byte, 4096)
	n, rerr := c.transport.Read(buf)
	if n > 0 {
		c.framer.feed(buf[:n])
	}
	if rerr != nil && rerr != transport.ErrWouldBlock {
		return c.fail(transportErr(rerr))
	}

	for {
		line, ok := c.framer.nextLine()
		if !ok {
			break
		}
		done, err := c.handleLine(line)
		if err != nil || done {
			return done, err
		}
		if c.pendingBodyBytes > 0 {
			return false, nil
		}
	}

	return false, nil
}

// Run drives Step in a loop until STOP or error, for callers that want a
// blocking call (§5's "blocking wrapper") outside of Connect/Do/Disconnect.
// respTimeout bounds how long the engine may wait for any single response;
// it is rearmed on every command sent, so a slow-but-progressing exchange
// never trips it.
func (c *Conn) Run(respTimeout time.Duration) error {
	c.respTimeout = respTimeout
	return c.runUntilStop()
}

func (c *Conn) fail(e *Error) (bool, error) {
	c.markClosable()
	c.state = stateStop
	c.timeoutAt = time.Time{}
	c.pendingBodyBytes = 0
	return true, e
}

func (c *Conn) arm(respTimeout time.Duration) {
	if respTimeout > 0 {
		c.timeoutAt = time.Now().Add(respTimeout)
	}
}

func (c *Conn) handleLine(line string) (bool, error) {
	cls := classify(line, c.resptag, c.state)
	switch cls.kind {
	case ClassNone:
		return false, nil
	case ClassUntagged:
		return c.handleUntagged(line)
	case ClassContinuation:
		return c.handleContinuation(line)
	case ClassTaggedOK:
		return c.handleTagged(true, line)
	case ClassTaggedNO, ClassTaggedBAD:
		return c.handleTagged(false, line)
	default:
		return false, nil
	}
}

func (c *Conn) handleUntagged(line string) (bool, error) {
	switch c.state {
	case stateServerGreet:
		rest := strings.TrimPrefix(line, "* ")
		if !strings.HasPrefix(rest, "OK") {
			return c.fail(weirdErr("unexpected server greeting"))
		}
		c.sendCapability()
		return false, nil
	case stateCapability:
		parseCapabilityLine(c, line)
		return false, nil
	case stateFetch:
		return c.handleFetchUntagged(line)
	default:
		return false, nil
	}
}

func (c *Conn) handleContinuation(line string) (bool, error) {
	payload := strings.TrimPrefix(strings.TrimPrefix(line, "+"), " ")
	var challenge []byte
	if payload != "" {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return c.fail(weirdErr("invalid base64 continuation"))
		}
		challenge = decoded
	}

	switch c.state {
	case stateAuthenticatePlain:
		return c.authStep(challenge, stateAuthenticate)
	case stateAuthenticateLogin:
		return c.authStep(challenge, stateAuthenticateLoginPasswd)
	case stateAuthenticateLoginPasswd:
		return c.authStep(challenge, stateAuthenticate)
	case stateAuthenticateCRAMMD5:
		return c.authStep(challenge, stateAuthenticate)
	case stateAuthenticateDigestMD5:
		return c.authStep(challenge, stateAuthenticateDigestMD5Resp)
	case stateAuthenticateDigestMD5Resp:
		return c.authStep(challenge, stateAuthenticate)
	case stateAuthenticateNTLM:
		return c.authStep(challenge, stateAuthenticateNTLMType2Msg)
	case stateAuthenticateNTLMType2Msg:
		return c.authStep(challenge, stateAuthenticate)
	default:
		return c.fail(weirdErr("unexpected continuation"))
	}
}

func (c *Conn) authStep(challenge []byte, next state) (bool, error) {
	resp, err := c.mech.Next(challenge)
	if err != nil {
		return c.fail(authErr(err))
	}
	c.sendBare(resp)
	c.state = next
	return false, nil
}

var authStates = map[state]bool{
	stateAuthenticatePlain:         true,
	stateAuthenticateLogin:         true,
	stateAuthenticateLoginPasswd:   true,
	stateAuthenticateCRAMMD5:       true,
	stateAuthenticateDigestMD5:     true,
	stateAuthenticateDigestMD5Resp: true,
	stateAuthenticateNTLM:          true,
	stateAuthenticateNTLMType2Msg:  true,
	stateAuthenticate:              true,
}

func (c *Conn) handleTagged(ok bool, line string) (bool, error) {
	switch c.state {
	case stateCapability:
		if ok {
			return c.capabilityComplete()
		}
		c.enterLoginState()
		return false, nil

	case stateStartTLS:
		if ok {
			if err := c.transport.Upgrade(c.host); err != nil {
				return c.fail(tlsErr(err))
			}
			c.state = stateUpgradeTLS
			c.arm(c.respTimeout)
			return false, nil
		}
		if c.tlsMode == TLSRequired {
			return c.fail(useSSLFailedErr("STARTTLS refused by server"))
		}
		return c.enterAuthSelection()

	case stateLogin:
		if ok {
			c.state = stateStop
			return true, nil
		}
		return c.fail(loginDeniedErr("LOGIN rejected"))

	case stateSelect:
		if ok {
			c.state = stateFetch
			c.sendFetch()
			return false, nil
		}
		return c.fail(loginDeniedErr("SELECT rejected"))

	case stateFetch:
		if ok {
			if c.req != nil && c.req.Progress != nil {
				c.req.Progress.SetDownloadSize(0)
			}
			c.state = stateStop
			return true, nil
		}
		return c.fail(weirdErr("FETCH rejected"))

	case stateLogout:
		c.state = stateStop
		return true, nil

	default:
		if authStates[c.state] {
			if ok {
				c.state = stateStop
				return true, nil
			}
			return c.fail(loginDeniedErr("authentication rejected"))
		}
		return c.fail(weirdErr("unexpected tagged response"))
	}
}

func (c *Conn) capabilityComplete() (bool, error) {
	switch {
	case c.wantsTLS() && !c.ssldone && c.tlsSupported:
		c.state = stateStartTLS
		c.sendStartTLS()
		return false, nil
	case c.wantsTLS() && !c.ssldone && !c.tlsSupported:
		return c.fail(useSSLFailedErr("server does not advertise STARTTLS"))
	default:
		return c.enterAuthSelection()
	}
}

func (c *Conn) wantsTLS() bool {
	return c.tlsMode == TLSRequired || c.tlsMode == TLSOpportunistic
}

// enterAuthSelection implements the mechanism priority sweep (DIGEST-MD5 >
// CRAM-MD5 > NTLM > LOGIN > PLAIN, per mechanism.go's selectionOrder) and
// falls back to clear-text LOGIN, or to LOGIN_DENIED when the server has
// disabled it and no SASL mechanism is usable.
func (c *Conn) enterAuthSelection() (bool, error) {
	if c.creds.User == "" {
		c.state = stateStop
		return false, nil
	}
	for _, m := range selectionOrder {
		if !c.authmechs.has(m) {
			continue
		}
		mech, err := sasl.New(m.String(), c.saslCreds())
		if err != nil {
			continue
		}
		c.authused = m
		c.mech = mech
		c.enterAuthState(m)
		return false, nil
	}
	if c.loginDisabled {
		return c.fail(loginDeniedErr("no usable SASL mechanism and LOGIN is disabled"))
	}
	c.enterLoginState()
	return false, nil
}

func (c *Conn) saslCreds() sasl.Credentials {
	return sasl.Credentials{User: c.creds.User, Pass: c.creds.Pass, Host: c.host}
}

func mechAllowsIR(m Mechanism) bool {
	switch m {
	case MechLogin, MechPlain, MechNTLM:
		return true
	default:
		return false
	}
}

// enterAuthState sends the initial AUTHENTICATE command for m, applying the
// SASL-IR optimization (RFC 4959) when the server advertised it and the
// mechanism permits a client-first token.
func (c *Conn) enterAuthState(m Mechanism) {
	useIR := c.irSupported && mechAllowsIR(m)
	var irToken []byte
	if useIR {
		tok, err := c.mech.Start()
		if err != nil {
			useIR = false
		} else {
			irToken = tok
		}
	}

	body := "AUTHENTICATE " + m.String()
	if useIR {
		body += " " + base64.StdEncoding.EncodeToString(irToken)
	}
	c.sendCommand(body)

	switch m {
	case MechPlain:
		if useIR {
			c.state = stateAuthenticate
		} else {
			c.state = stateAuthenticatePlain
		}
	case MechLogin:
		if useIR {
			c.state = stateAuthenticateLoginPasswd
		} else {
			c.state = stateAuthenticateLogin
		}
	case MechCRAMMD5:
		c.state = stateAuthenticateCRAMMD5
	case MechDigestMD5:
		c.state = stateAuthenticateDigestMD5
	case MechNTLM:
		if useIR {
			c.state = stateAuthenticateNTLMType2Msg
		} else {
			c.state = stateAuthenticateNTLM
		}
	}
}

func (c *Conn) enterLoginState() {
	if c.creds.User == "" {
		c.state = stateStop
		return
	}
	c.state = stateLogin
	c.sendCommand(fmt.Sprintf("LOGIN %s %s", quotedOrEmpty(c.creds.User), quotedOrEmpty(c.creds.Pass)))
}

func (c *Conn) sendCapability() {
	c.state = stateCapability
	c.authmechs = 0
	c.authused = 0
	c.tlsSupported = false
	c.loginDisabled = false
	c.irSupported = false
	c.sendCommand("CAPABILITY")
}

func (c *Conn) sendStartTLS() {
	c.sendCommand("STARTTLS")
}

func (c *Conn) sendSelect(mailbox string) {
	c.state = stateSelect
	c.sendCommand("SELECT " + quotedOrEmpty(mailbox))
}

func (c *Conn) sendFetch() {
	uid := c.req.UID
	if uid == "" {
		// Open question preserved from spec.md §9: curl defaults an
		// absent UID to "1" rather than rejecting the URL.
		uid = "1"
	}
	c.sendCommand(fmt.Sprintf("FETCH %s BODY[%s]", uid, c.req.Section))
}

func (c *Conn) sendLogout() {
	c.state = stateLogout
	c.sendCommand("LOGOUT")
}

func (c *Conn) sendCommand(body string) {
	tag := c.nextTag()
	c.queueAndFlush([]byte(tag + " " + body))
	c.arm(c.respTimeout)
}

func (c *Conn) sendBare(resp []byte) {
	c.queueAndFlush([]byte(base64.StdEncoding.EncodeToString(resp)))
	c.arm(c.respTimeout)
}

func (c *Conn) queueAndFlush(line []byte) {
	c.framer.queueSend(line)
	if err := c.framer.flush(c.transport.Write); err != nil {
		c.sendErr = err
	}
}
