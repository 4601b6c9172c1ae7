package auth

import "testing"

func TestHMACKeyRoundTrip(t *testing.T) {
	Configure("test-jwt-secret", "test-master-secret")

	key := GenerateHMACKey("store-integration")
	userID, err := VerifyHMACKey(key)
	if err != nil {
		t.Fatalf("VerifyHMACKey: %v", err)
	}
	if userID != "store-integration" {
		t.Errorf("userID = %q, want store-integration", userID)
	}
}

func TestHMACKeyTamperDetected(t *testing.T) {
	Configure("test-jwt-secret", "test-master-secret")

	key := GenerateHMACKey("store-integration")
	if _, err := VerifyHMACKey("other-user." + key[len("store-integration")+1:]); err == nil {
		t.Errorf("tampered user ID accepted")
	}
	if _, err := VerifyHMACKey("not-a-key"); err == nil {
		t.Errorf("malformed key accepted")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	Configure("test-jwt-secret", "test-master-secret")

	token, err := CreateToken("admin")
	if err != nil {
		t.Fatalf("CreateToken: %v", err)
	}

	claims, err := VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.Username != "admin" {
		t.Errorf("username = %q, want admin", claims.Username)
	}
}
