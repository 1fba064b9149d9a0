package imap

func protocolErr(msg string) *Error      { return newErr(ErrCodeWeirdServerReply, msg, nil) }
func weirdErr(msg string) *Error         { return newErr(ErrCodeWeirdServerReply, msg, nil) }
func loginDeniedErr(msg string) *Error   { return newErr(ErrCodeLoginDenied, msg, nil) }
func useSSLFailedErr(msg string) *Error  { return newErr(ErrCodeUseSSLFailed, msg, nil) }
func transportErr(cause error) *Error    { return newErr(ErrCodeWeirdServerReply, "transport error", cause) }
func timeoutErr() *Error                 { return newErr(ErrCodeWeirdServerReply, "response timeout", nil) }
func authErr(cause error) *Error         { return newErr(ErrCodeLoginDenied, "SASL mechanism error", cause) }
func tlsErr(cause error) *Error          { return newErr(ErrCodeUseSSLFailed, "TLS handshake failed", cause) }
