package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/beautyvilla/server/internal/model"
)

func TestHashPassword(t *testing.T) {
	t.Run("unique hashes", func(t *testing.T) {
		pw := "password1234"
		hash, err := HashPassword(pw)
		if err != nil {
			t.Fatalf("password hash fail #1: %+v", err)
		}

		hash2, err := HashPassword(pw)
		if err != nil {
			t.Fatalf("password hash fail #2: %+v", err)
		}

		if hash == hash2 {
			t.Fatalf("hash and hash2 are the same hashes; should be different: %s, %s", hash, hash2)
		}
	})

	t.Run("empty password", func(t *testing.T) {
		_, err := HashPassword("")
		if err != nil {
			t.Errorf("HashPassword() failed on empty string: %+v", err)
		}
	})
}

func TestCheckPasswordHash(t *testing.T) {
	tests := []struct {
		name      string
		password  string
		checkPw   string
		hash      string
		wantErr   bool
		wantMatch bool
	}{
		{"correct pw", "mypassword1234", "mypassword1234", "", false, true},
		{"incorrect pw", "mypassword1234", "passwordDD1234", "", false, false},
		{"wrong hash", "mypassword1234", "passwordDD1234", "not-a-hash", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hash string
			var err error

			if tt.hash != "" {
				hash = tt.hash
			} else {
				hash, err = HashPassword(tt.password)
				if err != nil {
					t.Fatalf("%+v", err)
				}
			}

			isMatch, err := CheckPasswordHash(tt.checkPw, hash)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckPasswordHash() error = %+v", err)
			}
			if isMatch != tt.wantMatch {
				t.Errorf("password and hash don't match")
			}
		})
	}
}

func TestAdmit(t *testing.T) {
	identity := Identity{ID: 7, Role: model.RoleCustomer}
	tokenSecret := "validtokensecret"

	t.Run("Valid_token", func(t *testing.T) {
		tokenString, err := MakeJWT(identity, tokenSecret, 15*time.Second)
		if err != nil {
			t.Fatalf("MakeJWT() error = %+v", err)
		}

		got, err := Admit(tokenString, tokenSecret)
		if err != nil {
			t.Fatalf("Admit() error = %+v", err)
		}
		if got != identity {
			t.Errorf("want = %+v, got = %+v", identity, got)
		}
	})

	t.Run("Agent_role_claim", func(t *testing.T) {
		agent := Identity{ID: 1, Role: model.RoleAgent}
		tokenString, err := MakeJWT(agent, tokenSecret, 15*time.Second)
		if err != nil {
			t.Fatalf("MakeJWT() error = %+v", err)
		}

		got, err := Admit(tokenString, tokenSecret)
		if err != nil {
			t.Fatalf("Admit() error = %+v", err)
		}
		if got.Role != model.RoleAgent {
			t.Errorf("want role %q, got %q", model.RoleAgent, got.Role)
		}
	})

	t.Run("Missing_token", func(t *testing.T) {
		_, err := Admit("", tokenSecret)
		if !errors.Is(err, ErrMissingToken) {
			t.Fatalf("Admit() error = %+v, want ErrMissingToken", err)
		}
	})

	t.Run("Incorrect_secret", func(t *testing.T) {
		tokenString, err := MakeJWT(identity, tokenSecret, 15*time.Second)
		if err != nil {
			t.Fatalf("MakeJWT() error = %+v", err)
		}

		_, err = Admit(tokenString, "fakesecret")
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Admit() error = %+v, want ErrInvalidToken", err)
		}
	})

	t.Run("Expired_token", func(t *testing.T) {
		tokenString, err := MakeJWT(identity, tokenSecret, -1*time.Second)
		if err != nil {
			t.Fatalf("MakeJWT() error = %+v", err)
		}

		_, err = Admit(tokenString, tokenSecret)
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Admit() error = %+v, want ErrInvalidToken", err)
		}
	})

	t.Run("Malformed_token", func(t *testing.T) {
		_, err := Admit("not.a.token", tokenSecret)
		if !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("Admit() error = %+v, want ErrInvalidToken", err)
		}
	})
}

func TestIdentityFromContext(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		want := Identity{ID: 42, Role: model.RoleAgent}
		ctx := context.WithValue(context.Background(), IdentityKey, want)

		got, err := IdentityFromContext(ctx)
		if err != nil {
			t.Fatalf("IdentityFromContext() error = %+v", err)
		}
		if got != want {
			t.Errorf("want = %+v, got = %+v", want, got)
		}
	})

	t.Run("absent", func(t *testing.T) {
		_, err := IdentityFromContext(context.Background())
		if err == nil {
			t.Fatal("IdentityFromContext() expected error on empty context")
		}
	})
}
