package receipt

import (
	"testing"
	"time"
)

func TestSignAndVerify(t *testing.T) {
	signer := NewSigner([]byte("test-secret"), "imapfetch")

	token, err := signer.Sign(Claims{
		Mailbox: "INBOX", UID: "42", Section: "TEXT",
		BytesFetched: 2048, Mechanism: "DIGEST-MD5", TLSUsed: true,
	}, time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := Verify(token, []byte("test-secret"))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Mailbox != "INBOX" || claims.UID != "42" || claims.BytesFetched != 2048 {
		t.Errorf("claims = %+v, want mailbox INBOX uid 42 bytes 2048", claims)
	}
	if claims.Issuer != "imapfetch" {
		t.Errorf("Issuer = %q, want imapfetch", claims.Issuer)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	signer := NewSigner([]byte("correct-secret"), "imapfetch")
	token, err := signer.Sign(Claims{Mailbox: "INBOX", UID: "1"}, time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := Verify(token, []byte("wrong-secret")); err == nil {
		t.Error("expected error verifying with the wrong secret")
	}
}

func TestVerifyExpired(t *testing.T) {
	signer := NewSigner([]byte("s"), "imapfetch")
	token, err := signer.Sign(Claims{Mailbox: "INBOX", UID: "1"}, -time.Minute)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	if _, err := Verify(token, []byte("s")); err == nil {
		t.Error("expected error verifying an expired token")
	}
}
