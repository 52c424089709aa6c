package friendlinks_test

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-privateplot/internal/friendlinks"
	"github.com/goliatone/go-privateplot/internal/identity"
)

func newService(t *testing.T) (friendlinks.Service, *time.Time) {
	t.Helper()
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	svc := friendlinks.NewService(friendlinks.NewMemoryRepository(),
		friendlinks.WithNow(func() time.Time { return now }),
	)
	return svc, &now
}

func ptr(v string) *string { return &v }

func TestCreateDefaultsAndDerivedID(t *testing.T) {
	svc, _ := newService(t)

	link, err := svc.Create(context.Background(), friendlinks.CreateInput{
		Name: " Alice ",
		URL:  "https://alice.dev",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if link.Status != friendlinks.StatusActive {
		t.Fatalf("expected default status active, got %q", link.Status)
	}
	if link.Name != "Alice" {
		t.Fatalf("expected trimmed name, got %q", link.Name)
	}
	if link.ID != identity.FriendLinkUUID("https://alice.dev") {
		t.Fatalf("expected id derived from url, got %s", link.ID)
	}
}

func TestCreateRejectsDuplicateURL(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, friendlinks.CreateInput{Name: "Bob", URL: "https://bob.dev/"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	_, err := svc.Create(ctx, friendlinks.CreateInput{Name: "Bob again", URL: "https://BOB.dev"})
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if !errors.Is(err, friendlinks.ErrURLExists) {
		t.Fatalf("expected ErrURLExists, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	svc, _ := newService(t)
	cases := []friendlinks.CreateInput{
		{Name: "", URL: "https://ok.dev"},
		{Name: "No URL"},
		{Name: "Relative", URL: "/about"},
		{Name: "Bad scheme", URL: "ftp://files.dev"},
		{Name: "Bad avatar", URL: "https://ok.dev", Avatar: "avatar.png"},
		{Name: "Bad status", URL: "https://ok.dev", Status: "pending"},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), in)
		if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
			t.Fatalf("expected validation error for %+v, got %v", in, err)
		}
	}
}

func TestListOrderAndActiveFilter(t *testing.T) {
	svc, now := newService(t)
	ctx := context.Background()

	inputs := []friendlinks.CreateInput{
		{Name: "First", URL: "https://first.dev"},
		{Name: "Second", URL: "https://second.dev", Status: friendlinks.StatusInactive},
		{Name: "Third", URL: "https://third.dev"},
	}
	for _, in := range inputs {
		*now = now.Add(time.Minute)
		if _, err := svc.Create(ctx, in); err != nil {
			t.Fatalf("create %s: %v", in.Name, err)
		}
	}

	all, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 || all[0].Name != "First" || all[2].Name != "Third" {
		t.Fatalf("expected oldest first ordering, got %+v", all)
	}

	active, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 || active[1].Name != "Third" {
		t.Fatalf("expected two active links, got %+v", active)
	}
}

func TestUpdate(t *testing.T) {
	svc, now := newService(t)
	ctx := context.Background()

	carol, err := svc.Create(ctx, friendlinks.CreateInput{Name: "Carol", URL: "https://carol.dev"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, friendlinks.CreateInput{Name: "Dan", URL: "https://dan.dev"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	*now = now.Add(time.Hour)
	updated, err := svc.Update(ctx, carol.ID, friendlinks.UpdateInput{
		Description: ptr("Writes about Go"),
		Status:      ptr(friendlinks.StatusInactive),
		URL:         ptr("https://carol.blog"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != carol.ID || updated.Name != "Carol" {
		t.Fatalf("expected id and name kept, got %+v", updated)
	}
	if updated.URL != "https://carol.blog" || updated.Status != friendlinks.StatusInactive {
		t.Fatalf("unexpected update %+v", updated)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) {
		t.Fatalf("expected updatedAt bumped")
	}

	_, err = svc.Update(ctx, carol.ID, friendlinks.UpdateInput{URL: ptr("https://dan.dev/")})
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict when taking another link's url, got %v", err)
	}

	_, err = svc.Update(ctx, carol.ID, friendlinks.UpdateInput{Name: ptr("")})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}

	// the original url is free again but its derived id still belongs to carol
	_, err = svc.Create(ctx, friendlinks.CreateInput{Name: "New Carol", URL: "https://carol.dev"})
	if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
		t.Fatalf("expected conflict on derived id, got %v", err)
	}
}

func TestGetAndDeleteMissing(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	var notFound *friendlinks.NotFoundError

	if _, err := svc.Get(ctx, uuid.New()); !errors.As(err, &notFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err := svc.Delete(ctx, uuid.New()); !errors.As(err, &notFound) {
		t.Fatalf("expected not found on delete, got %v", err)
	}
	if _, err := svc.Update(ctx, uuid.New(), friendlinks.UpdateInput{Name: ptr("x")}); !errors.As(err, &notFound) {
		t.Fatalf("expected not found on update, got %v", err)
	}
}
