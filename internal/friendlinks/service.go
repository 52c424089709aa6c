package friendlinks

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"github.com/goliatone/go-privateplot/internal/identity"
	"github.com/goliatone/go-privateplot/internal/logging"
	"github.com/goliatone/go-privateplot/pkg/interfaces"
)

// CreateInput is the payload for a new friend link. Status defaults to active.
type CreateInput struct {
	Name        string `json:"name"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Avatar      string `json:"avatar,omitempty"`
	Status      string `json:"status,omitempty"`
}

func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.URL, validation.Required, validation.By(absoluteURL)),
		validation.Field(&in.Avatar, validation.By(absoluteURL)),
		validation.Field(&in.Status, validation.In(StatusActive, StatusInactive)),
	)
}

// UpdateInput carries the fields to change; nil fields are kept.
type UpdateInput struct {
	Name        *string `json:"name,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	Avatar      *string `json:"avatar,omitempty"`
	Status      *string `json:"status,omitempty"`
}

func (in UpdateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.NilOrNotEmpty, validation.Length(1, 200)),
		validation.Field(&in.URL, validation.NilOrNotEmpty, validation.By(absoluteURL)),
		validation.Field(&in.Avatar, validation.By(absoluteURL)),
		validation.Field(&in.Status, validation.NilOrNotEmpty, validation.In(StatusActive, StatusInactive)),
	)
}

// Service manages friend links.
type Service interface {
	List(ctx context.Context) ([]*FriendLink, error)
	ListActive(ctx context.Context) ([]*FriendLink, error)
	Get(ctx context.Context, id uuid.UUID) (*FriendLink, error)
	Create(ctx context.Context, in CreateInput) (*FriendLink, error)
	Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*FriendLink, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type ServiceOption func(*service)

func WithNow(now func() time.Time) ServiceOption {
	return func(s *service) {
		if now != nil {
			s.now = now
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo   Repository
	now    func() time.Time
	logger interfaces.Logger
}

func NewService(repo Repository, opts ...ServiceOption) Service {
	s := &service{
		repo:   repo,
		now:    time.Now,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *service) List(ctx context.Context) ([]*FriendLink, error) {
	return s.repo.List(ctx)
}

func (s *service) ListActive(ctx context.Context) ([]*FriendLink, error) {
	links, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	active := make([]*FriendLink, 0, len(links))
	for _, link := range links {
		if link.Active() {
			active = append(active, link)
		}
	}
	return active, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*FriendLink, error) {
	return s.repo.GetByID(ctx, id)
}

// Create stores a new link. The id is derived from the URL so registering
// the same site twice is a conflict.
func (s *service) Create(ctx context.Context, in CreateInput) (*FriendLink, error) {
	if err := in.Validate(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid friend link")
	}

	id := identity.FriendLinkUUID(in.URL)
	if err := s.ensureURLUnused(ctx, in.URL, uuid.Nil); err != nil {
		return nil, err
	}
	if err := s.ensureIDFree(ctx, id); err != nil {
		return nil, err
	}

	status := in.Status
	if status == "" {
		status = StatusActive
	}
	now := s.now().UTC()
	link, err := s.repo.Create(ctx, &FriendLink{
		ID:          id,
		Name:        strings.TrimSpace(in.Name),
		URL:         strings.TrimSpace(in.URL),
		Description: strings.TrimSpace(in.Description),
		Avatar:      strings.TrimSpace(in.Avatar),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		if errors.Is(err, ErrURLExists) {
			return nil, urlConflict(in.URL)
		}
		return nil, err
	}
	s.logger.Info("friendlinks.created", "id", link.ID, "url", link.URL)
	return link, nil
}

// Update changes the given fields. The id stays fixed even when the URL
// changes, but the new URL must not belong to another link.
func (s *service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*FriendLink, error) {
	if err := in.Validate(); err != nil {
		return nil, goerrors.FromOzzoValidation(err, "invalid friend link update")
	}
	link, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.URL != nil && identity.CanonicalURL(*in.URL) != identity.CanonicalURL(link.URL) {
		if err := s.ensureURLUnused(ctx, *in.URL, id); err != nil {
			return nil, err
		}
		link.URL = strings.TrimSpace(*in.URL)
	}
	if in.Name != nil {
		link.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		link.Description = strings.TrimSpace(*in.Description)
	}
	if in.Avatar != nil {
		link.Avatar = strings.TrimSpace(*in.Avatar)
	}
	if in.Status != nil {
		link.Status = *in.Status
	}
	link.UpdatedAt = s.now().UTC()

	updated, err := s.repo.Update(ctx, link)
	if err != nil {
		return nil, err
	}
	s.logger.Info("friendlinks.updated", "id", updated.ID)
	return updated, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("friendlinks.deleted", "id", id)
	return nil
}

// ensureIDFree guards against a link created for this URL and later moved to
// another URL, which still owns the derived id.
func (s *service) ensureIDFree(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return urlConflict(existing.URL)
	}
	var notFound *NotFoundError
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func (s *service) ensureURLUnused(ctx context.Context, rawURL string, self uuid.UUID) error {
	links, err := s.repo.List(ctx)
	if err != nil {
		return err
	}
	canonical := identity.CanonicalURL(rawURL)
	for _, link := range links {
		if link.ID != self && identity.CanonicalURL(link.URL) == canonical {
			return urlConflict(rawURL)
		}
	}
	return nil
}

func urlConflict(rawURL string) error {
	return goerrors.Wrap(ErrURLExists, goerrors.CategoryConflict, "friend link for "+rawURL+" already exists").
		WithCode(409).
		WithTextCode("FRIEND_LINK_EXISTS")
}

func absoluteURL(value any) error {
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	case *string:
		if v == nil {
			return nil
		}
		raw = *v
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return errors.New("must be an absolute http(s) URL")
	}
	return nil
}
