package adminauth

import (
	"context"
	"strconv"
	"testing"
)

func TestLoginIssuesTokenPair(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()
	id := te.registerVerified(t, "admin@moviebox.io", "opensesame1!")

	pair, err := te.engine.Login(ctx, "admin@moviebox.io", "opensesame1!")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if pair.TokenType != "Bearer" {
		t.Errorf("token type = %q, want Bearer", pair.TokenType)
	}

	claims, err := te.engine.jwtManager.Parse(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.Subject != strconv.FormatInt(id, 10) {
		t.Errorf("access subject = %q, want %d", claims.Subject, id)
	}

	refreshClaims, err := te.engine.jwtManager.Parse(pair.RefreshToken)
	if err != nil {
		t.Fatalf("parse refresh token: %v", err)
	}
	if refreshClaims.Subject != "" {
		t.Errorf("refresh token must carry no subject, got %q", refreshClaims.Subject)
	}

	stored, err := te.engine.refreshStore.Get(ctx, id)
	if err != nil {
		t.Fatalf("refresh slot read: %v", err)
	}
	if stored != pair.RefreshToken {
		t.Error("refresh slot must hold the issued refresh token")
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	te := newTestEngine(t, nil)

	_, err := te.engine.Login(context.Background(), "nobody@moviebox.io", "whatever1!")
	if CodeOf(err) != CodeUserNotFoundByEmail {
		t.Fatalf("code = %q, want %q", CodeOf(err), CodeUserNotFoundByEmail)
	}
	if KindOf(err) != KindNotFound {
		t.Fatalf("kind = %v, want %v", KindOf(err), KindNotFound)
	}
}

func TestLoginRejectsUnverifiedAccount(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()

	if _, err := te.engine.Register(ctx, "admin@moviebox.io", "opensesame1!"); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Correct password, but the email was never verified.
	_, err := te.engine.Login(ctx, "admin@moviebox.io", "opensesame1!")
	if CodeOf(err) != CodeEmailNotVerifiedYet {
		t.Fatalf("code = %q, want %q", CodeOf(err), CodeEmailNotVerifiedYet)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	te := newTestEngine(t, nil)
	te.registerVerified(t, "admin@moviebox.io", "opensesame1!")

	_, err := te.engine.Login(context.Background(), "admin@moviebox.io", "wrongwrong2!")
	if CodeOf(err) != CodeUserNotFoundByPassword {
		t.Fatalf("code = %q, want %q", CodeOf(err), CodeUserNotFoundByPassword)
	}
	// Same kind as the unknown-email failure so callers cannot distinguish
	// which credential was wrong by error class.
	if KindOf(err) != KindNotFound {
		t.Fatalf("kind = %v, want %v", KindOf(err), KindNotFound)
	}
}

func TestLoginReplacesEarlierRefreshToken(t *testing.T) {
	te := newTestEngine(t, nil)
	ctx := context.Background()
	id := te.registerVerified(t, "admin@moviebox.io", "opensesame1!")

	first, err := te.engine.Login(ctx, "admin@moviebox.io", "opensesame1!")
	if err != nil {
		t.Fatalf("first login: %v", err)
	}
	second, err := te.engine.Login(ctx, "admin@moviebox.io", "opensesame1!")
	if err != nil {
		t.Fatalf("second login: %v", err)
	}

	stored, err := te.engine.refreshStore.Get(ctx, id)
	if err != nil {
		t.Fatalf("refresh slot read: %v", err)
	}
	if stored != second.RefreshToken {
		t.Error("slot must hold the latest refresh token")
	}
	if stored == first.RefreshToken {
		t.Error("earlier refresh token must be superseded")
	}
}
