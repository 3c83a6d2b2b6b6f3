package duplicate

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

type fakeStore struct {
	byPhone map[string]uuid.UUID
	queried []string
}

func (f *fakeStore) FindByCanonicalPhone(_ context.Context, canonicalPhone string, exclude uuid.UUID) (uuid.UUID, error) {
	f.queried = append(f.queried, canonicalPhone)
	id, ok := f.byPhone[canonicalPhone]
	if !ok || id == exclude {
		return uuid.Nil, nil
	}
	return id, nil
}

func TestDetect_MatchesAcrossFormats(t *testing.T) {
	existing := uuid.New()
	store := &fakeStore{byPhone: map[string]uuid.UUID{"12345678901": existing}}
	det := New(store)

	// The first lead was stored as a bare 10-digit number; the candidate
	// arrives in E.164 form. Both canonicalize to 12345678901.
	match, err := det.Detect(context.Background(), "+12345678901", uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil {
		t.Fatalf("expected a duplicate match")
	}
	if match.DuplicateOf != existing {
		t.Fatalf("expected match against %s, got %s", existing, match.DuplicateOf)
	}
	if match.Reason != "phone" {
		t.Fatalf("expected reason phone, got %s", match.Reason)
	}
}

func TestDetect_BareTenDigitNumberGetsCountryCode(t *testing.T) {
	existing := uuid.New()
	store := &fakeStore{byPhone: map[string]uuid.UUID{"12345678901": existing}}
	det := New(store)

	match, err := det.Detect(context.Background(), "2345678901", uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match == nil {
		t.Fatalf("expected 10-digit candidate to canonicalize and match")
	}
}

func TestDetect_NoMatchReturnsNil(t *testing.T) {
	store := &fakeStore{byPhone: map[string]uuid.UUID{}}
	det := New(store)

	match, err := det.Detect(context.Background(), "2345678901", uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Fatalf("expected no match, got %v", match)
	}
}

func TestDetect_BlankPhoneNeverQueries(t *testing.T) {
	store := &fakeStore{byPhone: map[string]uuid.UUID{}}
	det := New(store)

	match, err := det.Detect(context.Background(), "   ", uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Fatalf("expected no match for blank phone")
	}
	if len(store.queried) != 0 {
		t.Fatalf("blank phone should not hit the store, queried %v", store.queried)
	}
}

func TestDetect_ExcludesTheRecordBeingSaved(t *testing.T) {
	self := uuid.New()
	store := &fakeStore{byPhone: map[string]uuid.UUID{"12345678901": self}}
	det := New(store)

	match, err := det.Detect(context.Background(), "+12345678901", self)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match != nil {
		t.Fatalf("a lead must not be a duplicate of itself")
	}
}
