package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/devhive/ai-chat-gateway/internal/db"
	"github.com/devhive/ai-chat-gateway/internal/gwerr"
	"github.com/devhive/ai-chat-gateway/internal/models"
)

type fakeKeyStore struct {
	keys map[string]*models.SiteKey
}

func (f *fakeKeyStore) GetSiteKey(_ context.Context, key string) (*models.SiteKey, error) {
	sk, ok := f.keys[key]
	if !ok {
		return nil, db.ErrNotFound
	}
	return sk, nil
}

func newGate(keys ...*models.SiteKey) *AccessGate {
	store := &fakeKeyStore{keys: make(map[string]*models.SiteKey)}
	for _, sk := range keys {
		store.keys[sk.Key] = sk
	}
	return NewAccessGate(store)
}

func reasonOf(t *testing.T, err error) string {
	t.Helper()
	var ge *gwerr.Error
	if !errors.As(err, &ge) {
		t.Fatalf("expected gateway error, got %v", err)
	}
	if ge.Code != gwerr.CodeAccessDenied {
		t.Fatalf("code = %s, want ACCESS_DENIED", ge.Code)
	}
	return ge.Reason
}

func TestValidate_UnknownKey(t *testing.T) {
	g := newGate()

	_, err := g.Validate(context.Background(), "nope", "example.com")
	if reasonOf(t, err) != ReasonNotFound {
		t.Errorf("reason = %s, want %s", reasonOf(t, err), ReasonNotFound)
	}
}

func TestValidate_NonActiveStatusAlwaysDenied(t *testing.T) {
	tests := []struct {
		status models.KeyStatus
		reason string
	}{
		{models.KeySuspended, ReasonSuspended},
		{models.KeyRevoked, ReasonRevoked},
	}

	for _, tt := range tests {
		g := newGate(&models.SiteKey{Key: "k1", Status: tt.status})

		// Denied regardless of origin, even with an empty allow-list.
		for _, origin := range []string{"example.com", "other.io", ""} {
			_, err := g.Validate(context.Background(), "k1", origin)
			if got := reasonOf(t, err); got != tt.reason {
				t.Errorf("status %s origin %q: reason = %s, want %s", tt.status, origin, got, tt.reason)
			}
		}
	}
}

func TestValidate_OriginMatching(t *testing.T) {
	g := newGate(&models.SiteKey{
		Key:            "k1",
		Status:         models.KeyActive,
		AllowedDomains: []string{"example.com", "*.widgets.io"},
	})

	allowed := []string{"example.com", "EXAMPLE.COM", "chat.widgets.io", "a.b.widgets.io"}
	for _, origin := range allowed {
		if _, err := g.Validate(context.Background(), "k1", origin); err != nil {
			t.Errorf("origin %q: unexpected deny: %v", origin, err)
		}
	}

	denied := []string{"evil.com", "widgets.io", "example.com.evil.com", ""}
	for _, origin := range denied {
		_, err := g.Validate(context.Background(), "k1", origin)
		if err == nil {
			t.Errorf("origin %q: expected deny", origin)
			continue
		}
		if got := reasonOf(t, err); got != ReasonDomainNotAllowed {
			t.Errorf("origin %q: reason = %s, want %s", origin, got, ReasonDomainNotAllowed)
		}
	}
}

func TestValidate_EmptyAllowListAdmitsAnyOrigin(t *testing.T) {
	g := newGate(&models.SiteKey{Key: "k1", Status: models.KeyActive})

	sk, err := g.Validate(context.Background(), "k1", "anything.dev")
	if err != nil {
		t.Fatalf("unexpected deny: %v", err)
	}
	if sk.Key != "k1" {
		t.Errorf("returned key = %s, want k1", sk.Key)
	}
}
