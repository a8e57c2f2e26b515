package service

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/magaru/shortly/internal/app/model"
	"github.com/magaru/shortly/internal/app/repository"
	"github.com/magaru/shortly/internal/infra/metrics"
	"go.uber.org/zap"
)

var (
	// ErrInvalidURL signals that the submitted URL is not an absolute
	// http or https URL.
	ErrInvalidURL = errors.New("invalid url: must be absolute http or https")

	// ErrInvalidClickLimit signals a click limit that is neither
	// non-negative nor -1 (unlimited).
	ErrInvalidClickLimit = errors.New("click limit must be >= 0, or -1 for unlimited")

	// ErrOwnerNotFound signals link creation on behalf of an unknown user.
	ErrOwnerNotFound = errors.New("owner does not exist")

	// ErrLinkNotFound signals an unknown short code.
	ErrLinkNotFound = errors.New("link not found")

	// ErrNotOwner signals a mutation attempt by someone other than the
	// link's owner.
	ErrNotOwner = errors.New("operation allowed for the link owner only")

	// ErrLinkExpired signals an access to a link whose TTL has elapsed.
	ErrLinkExpired = errors.New("link has expired")

	// ErrClickLimitReached signals an access to a link whose quota ran out.
	ErrClickLimitReached = errors.New("click limit reached")

	// ErrTooManyCollisions signals that code generation kept colliding
	// with live codes and gave up.
	ErrTooManyCollisions = errors.New("failed to generate a unique short code")
)

// maxCodeAttempts caps the collision retry loop in CreateLink.
const maxCodeAttempts = 10

// LinkServiceOptions bundles the dependencies of a LinkService. Logger,
// Notifier and Metrics may be left nil; no-op implementations are used.
type LinkServiceOptions struct {
	Logger            *zap.Logger
	Users             repository.UserRepository
	Links             repository.LinkRepository
	Codes             CodeGenerator
	Notifier          Notifier
	Metrics           *metrics.Metrics
	LinkTTL           time.Duration
	DefaultClickLimit int
}

// LinkService implements the link lifecycle: user and link creation,
// click processing against TTL and quota, owner-gated mutation, and bulk
// expiry for the cleanup worker.
type LinkService struct {
	logger       *zap.Logger
	users        repository.UserRepository
	links        repository.LinkRepository
	codes        CodeGenerator
	notifier     Notifier
	metrics      *metrics.Metrics
	ttl          time.Duration
	defaultLimit int
	now          func() time.Time
}

// NewLinkService creates a LinkService from its options.
func NewLinkService(opts LinkServiceOptions) *LinkService {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = NopNotifier{}
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.NewNop()
	}
	return &LinkService{
		logger:       logger,
		users:        opts.Users,
		links:        opts.Links,
		codes:        opts.Codes,
		notifier:     notifier,
		metrics:      m,
		ttl:          opts.LinkTTL,
		defaultLimit: opts.DefaultClickLimit,
		now:          time.Now,
	}
}

// CreateUser mints a new user and returns its identifier.
func (s *LinkService) CreateUser() uuid.UUID {
	user := model.NewUser(s.now())
	s.users.Save(user)
	s.metrics.UsersCreated.Inc()
	s.logger.Info("created user", zap.String("user_id", user.ID.String()))
	return user.ID
}

// UserExists reports whether the given user identifier is known.
func (s *LinkService) UserExists(id uuid.UUID) bool {
	return s.users.Exists(id)
}

// CreateLink validates the URL and owner, generates a unique short code
// and persists the link. A nil customLimit falls back to the configured
// default click limit.
func (s *LinkService) CreateLink(originalURL string, ownerID uuid.UUID, customLimit *int) (*model.Link, error) {
	if err := validateURL(originalURL); err != nil {
		return nil, err
	}
	if !s.users.Exists(ownerID) {
		return nil, fmt.Errorf("%w: %s", ErrOwnerNotFound, ownerID)
	}

	limit := s.defaultLimit
	if customLimit != nil {
		if *customLimit < 0 && *customLimit != model.UnlimitedClicks {
			return nil, ErrInvalidClickLimit
		}
		limit = *customLimit
	}

	for attempt := 1; attempt <= maxCodeAttempts; attempt++ {
		code := s.codes.Generate(originalURL, ownerID)
		now := s.now()
		link := &model.Link{
			ShortCode:   code,
			OriginalURL: originalURL,
			OwnerID:     ownerID,
			CreatedAt:   now,
			ExpiresAt:   now.Add(s.ttl),
			ClickLimit:  limit,
		}

		err := s.links.Save(link)
		if err == nil {
			s.metrics.LinksCreated.Inc()
			s.logger.Info("created short link",
				zap.String("code", code),
				zap.String("owner_id", ownerID.String()),
				zap.Int("click_limit", limit),
				zap.Time("expires_at", link.ExpiresAt))
			return link, nil
		}
		if !errors.Is(err, repository.ErrCodeTaken) {
			return nil, fmt.Errorf("save link: %w", err)
		}
		s.logger.Warn("short code collision, retrying",
			zap.String("code", code),
			zap.Int("attempt", attempt))
	}

	return nil, fmt.Errorf("%w after %d attempts", ErrTooManyCollisions, maxCodeAttempts)
}

// Access resolves a short code to its original URL, counting the click.
// It fails with ErrLinkNotFound, ErrLinkExpired or ErrClickLimitReached;
// the latter two fire the matching notification and leave the click count
// untouched. The expiry/quota check and the increment happen as one
// atomic step, so concurrent accesses cannot overshoot the quota.
func (s *LinkService) Access(shortCode string) (string, error) {
	var (
		originalURL string
		notify      func()
	)
	now := s.now()

	err := s.links.Update(shortCode, func(l *model.Link) error {
		if l.Expired(now) {
			target := l.OriginalURL
			notify = func() { s.notifier.LinkExpired(shortCode, target) }
			return ErrLinkExpired
		}
		if l.LimitReached() {
			target, limit := l.OriginalURL, l.ClickLimit
			notify = func() { s.notifier.ClickLimitReached(shortCode, target, limit) }
			return ErrClickLimitReached
		}
		l.ClickCount++
		originalURL = l.OriginalURL
		return nil
	})

	// Notifications fire outside the store's critical section.
	if notify != nil {
		notify()
	}

	switch {
	case err == nil:
		s.metrics.Clicks.Inc()
		s.logger.Info("processed click", zap.String("code", shortCode))
		return originalURL, nil
	case errors.Is(err, repository.ErrLinkNotFound):
		s.metrics.RejectedClicks.WithLabelValues(metrics.ReasonNotFound).Inc()
		return "", ErrLinkNotFound
	case errors.Is(err, ErrLinkExpired):
		s.metrics.RejectedClicks.WithLabelValues(metrics.ReasonExpired).Inc()
		return "", err
	case errors.Is(err, ErrClickLimitReached):
		s.metrics.RejectedClicks.WithLabelValues(metrics.ReasonLimitReached).Inc()
		return "", err
	default:
		return "", err
	}
}

// UpdateClickLimit replaces the click quota of a link. Only the owner may
// do this; raising the limit on an exhausted link makes it accessible
// again.
func (s *LinkService) UpdateClickLimit(shortCode string, requesterID uuid.UUID, newLimit int) error {
	err := s.links.Update(shortCode, func(l *model.Link) error {
		if !l.OwnedBy(requesterID) {
			return ErrNotOwner
		}
		if newLimit < 0 && newLimit != model.UnlimitedClicks {
			return ErrInvalidClickLimit
		}
		l.ClickLimit = newLimit
		return nil
	})
	if errors.Is(err, repository.ErrLinkNotFound) {
		return ErrLinkNotFound
	}
	if err != nil {
		return err
	}

	s.logger.Info("updated click limit",
		zap.String("code", shortCode),
		zap.Int("click_limit", newLimit))
	return nil
}

// Delete removes a link. Only the owner may delete it.
func (s *LinkService) Delete(shortCode string, requesterID uuid.UUID) error {
	link, ok := s.links.FindByCode(shortCode)
	if !ok {
		return ErrLinkNotFound
	}
	if !link.OwnedBy(requesterID) {
		return ErrNotOwner
	}

	// Re-check ownership at removal time; the code could have been
	// deleted and reissued between the lookup and this call.
	if _, ok := s.links.DeleteIf(shortCode, func(l *model.Link) bool { return l.OwnedBy(requesterID) }); !ok {
		return ErrLinkNotFound
	}

	s.logger.Info("deleted short link",
		zap.String("code", shortCode),
		zap.String("user_id", requesterID.String()))
	return nil
}

// LinksByOwner returns a snapshot of all links owned by the given user.
func (s *LinkService) LinksByOwner(ownerID uuid.UUID) []*model.Link {
	return s.links.FindByOwner(ownerID)
}

// Info returns the link for a short code without counting a click or
// firing notifications.
func (s *LinkService) Info(shortCode string) (*model.Link, bool) {
	return s.links.FindByCode(shortCode)
}

// CleanupExpired deletes every expired link, firing an expiry
// notification per deleted link, and returns the number removed.
// Exhausted-but-unexpired links are left alone: they stay inspectable
// until their TTL elapses or the owner deletes them.
func (s *LinkService) CleanupExpired() int {
	now := s.now()
	deleted := 0

	for _, link := range s.links.FindAll() {
		if !link.Expired(now) {
			continue
		}
		// Expiry is re-checked under the store lock so a sweep racing a
		// foreground delete cannot notify for the same link twice.
		removed, ok := s.links.DeleteIf(link.ShortCode, func(l *model.Link) bool { return l.Expired(now) })
		if !ok {
			continue
		}
		s.notifier.LinkExpired(removed.ShortCode, removed.OriginalURL)
		s.metrics.ExpiredSwept.Inc()
		deleted++
	}

	if deleted > 0 {
		s.logger.Info("removed expired links", zap.Int("count", deleted))
	}
	return deleted
}

// Statistics returns the current number of users and live links.
func (s *LinkService) Statistics() (users, links int) {
	return s.users.Count(), s.links.Count()
}

// validateURL accepts only well-formed absolute http/https URLs.
func validateURL(raw string) error {
	if raw == "" {
		return ErrInvalidURL
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ErrInvalidURL
	}
	if parsed.Host == "" {
		return ErrInvalidURL
	}
	return nil
}
