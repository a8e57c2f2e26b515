package repository

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/magaru/shortly/internal/app/model"
)

var (
	// ErrLinkNotFound signals that the requested short link does not exist.
	ErrLinkNotFound = errors.New("link not found")

	// ErrCodeTaken signals that a link with the same short code is already live.
	ErrCodeTaken = errors.New("short code already taken")
)

// LinkRepository defines the data access contract for short links.
//
// Implementations must keep the owner index consistent with the primary
// code map: no reader may ever observe a code in one and not the other.
// Update runs its callback as a single atomic read-modify-write per code;
// the callback must not change ShortCode or OwnerID and must not retain
// the *model.Link after returning.
type LinkRepository interface {
	Save(link *model.Link) error
	FindByCode(code string) (*model.Link, bool)
	FindByOwner(ownerID uuid.UUID) []*model.Link
	FindAll() []*model.Link
	Exists(code string) bool
	Update(code string, fn func(*model.Link) error) error
	Delete(code string) bool
	DeleteIf(code string, cond func(*model.Link) bool) (*model.Link, bool)
	Count() int
}

type memoryLinkRepository struct {
	mu      sync.RWMutex
	byCode  map[string]*model.Link
	byOwner map[uuid.UUID]map[string]struct{}
}

// NewLinkRepository returns an in-memory, concurrency-safe LinkRepository
// with a secondary owner index.
func NewLinkRepository() LinkRepository {
	return &memoryLinkRepository{
		byCode:  make(map[string]*model.Link),
		byOwner: make(map[uuid.UUID]map[string]struct{}),
	}
}

// Save stores the link, failing with ErrCodeTaken if the code is live.
// The existence check and the insert happen under one lock, so two
// concurrent saves of the same code cannot both succeed.
func (r *memoryLinkRepository) Save(link *model.Link) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byCode[link.ShortCode]; exists {
		return ErrCodeTaken
	}

	stored := *link
	r.byCode[link.ShortCode] = &stored

	codes, ok := r.byOwner[link.OwnerID]
	if !ok {
		codes = make(map[string]struct{})
		r.byOwner[link.OwnerID] = codes
	}
	codes[link.ShortCode] = struct{}{}
	return nil
}

// FindByCode returns a copy of the link, so callers cannot mutate stored
// state behind the repository's back.
func (r *memoryLinkRepository) FindByCode(code string) (*model.Link, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	link, ok := r.byCode[code]
	if !ok {
		return nil, false
	}
	cp := *link
	return &cp, true
}

func (r *memoryLinkRepository) FindByOwner(ownerID uuid.UUID) []*model.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()

	codes := r.byOwner[ownerID]
	result := make([]*model.Link, 0, len(codes))
	for code := range codes {
		if link, ok := r.byCode[code]; ok {
			cp := *link
			result = append(result, &cp)
		}
	}
	return result
}

func (r *memoryLinkRepository) FindAll() []*model.Link {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Link, 0, len(r.byCode))
	for _, link := range r.byCode {
		cp := *link
		result = append(result, &cp)
	}
	return result
}

func (r *memoryLinkRepository) Exists(code string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.byCode[code]
	return ok
}

// Update applies fn to the stored link under the write lock. If fn returns
// an error the mutation is considered aborted and the error is passed
// through unchanged.
func (r *memoryLinkRepository) Update(code string, fn func(*model.Link) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.byCode[code]
	if !ok {
		return ErrLinkNotFound
	}
	return fn(link)
}

func (r *memoryLinkRepository) Delete(code string) bool {
	_, ok := r.DeleteIf(code, func(*model.Link) bool { return true })
	return ok
}

// DeleteIf removes the link only when cond holds, evaluating cond and the
// removal under one lock. It returns the removed link so callers can fire
// notifications without re-reading deleted state.
func (r *memoryLinkRepository) DeleteIf(code string, cond func(*model.Link) bool) (*model.Link, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	link, ok := r.byCode[code]
	if !ok || !cond(link) {
		return nil, false
	}

	delete(r.byCode, code)
	if codes, ok := r.byOwner[link.OwnerID]; ok {
		delete(codes, code)
		if len(codes) == 0 {
			delete(r.byOwner, link.OwnerID)
		}
	}
	return link, true
}

func (r *memoryLinkRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.byCode)
}
