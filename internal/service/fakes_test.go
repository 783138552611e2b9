package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/iliyamo/game-rental/internal/model"
	"github.com/iliyamo/game-rental/internal/queue"
	"github.com/iliyamo/game-rental/internal/repository"
	"github.com/iliyamo/game-rental/internal/utils"
)

// memDB backs the fake stores. One mutex guards every table so the
// conditional updates behave like single SQL statements.
type memDB struct {
	mu      sync.Mutex
	users   map[uint64]*model.User
	games   map[uint64]*model.Game
	rentals map[uint64]*model.Rental
	nextID  uint64
	clock   time.Time

	failCreateRental error
}

func newMemDB() *memDB {
	return &memDB{
		users:   map[uint64]*model.User{},
		games:   map[uint64]*model.Game{},
		rentals: map[uint64]*model.Rental{},
		clock:   time.Date(2024, 3, 7, 10, 0, 0, 0, time.UTC),
	}
}

func (db *memDB) id() uint64 { db.nextID++; return db.nextID }

type fakeUsers struct{ *memDB }

func (f fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return repository.ErrUsernameExists
		}
	}
	u.ID = f.id()
	u.CreatedAt = f.clock
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f fakeUsers) GetByUsername(_ context.Context, username string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

type fakeGames struct{ *memDB }

func (f fakeGames) Create(_ context.Context, g *model.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g.ID = f.id()
	f.clock = f.clock.Add(time.Second)
	g.CreatedAt = f.clock
	cp := *g
	f.games[g.ID] = &cp
	return nil
}

func (f fakeGames) GetByID(_ context.Context, id uint64) (*model.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok {
		return nil, repository.ErrGameNotFound
	}
	cp := *g
	return &cp, nil
}

func (f fakeGames) GetByIDForUpdate(ctx context.Context, id uint64) (*model.Game, error) {
	return f.GetByID(ctx, id)
}

func (f fakeGames) view(g *model.Game) model.GameView {
	return model.GameView{
		ID:              g.ID,
		Title:           g.Title,
		Genre:           g.Genre,
		Platform:        g.Platform,
		Status:          g.Status,
		NumberOfRentals: g.NumberOfRentals,
		SubmittedBy:     f.users[g.SubmittedBy].Username,
	}
}

func (f fakeGames) ListOrdered(_ context.Context, sortBy model.SortBy) ([]model.GameView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.GameView, 0, len(f.games))
	for _, g := range f.games {
		out = append(out, f.view(g))
	}
	sort.Slice(out, func(i, j int) bool {
		if sortBy == model.SortByPopularity && out[i].NumberOfRentals != out[j].NumberOfRentals {
			return out[i].NumberOfRentals > out[j].NumberOfRentals
		}
		if out[i].Title != out[j].Title {
			return out[i].Title < out[j].Title
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (f fakeGames) ListBySubmitter(_ context.Context, userID uint64) ([]model.GameView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.GameView, 0)
	for _, g := range f.games {
		if g.SubmittedBy == userID {
			out = append(out, f.view(g))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

// Search scores each title by the number of query tokens it contains.
func (f fakeGames) Search(_ context.Context, title string) ([]model.GameView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	terms := strings.Fields(strings.ToLower(title))
	type hit struct {
		v     model.GameView
		score int
	}
	var hits []hit
	for _, g := range f.games {
		words := strings.Fields(strings.ToLower(g.Title))
		score := 0
		for _, t := range terms {
			for _, w := range words {
				if w == t {
					score++
				}
			}
		}
		if score > 0 {
			hits = append(hits, hit{f.view(g), score})
		}
	}
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].v.ID < hits[j].v.ID
	})
	out := make([]model.GameView, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.v)
	}
	return out, nil
}

func (f fakeGames) MarkRented(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok || g.Status != model.GameAvailable {
		return repository.ErrConflict
	}
	g.Status = model.GameUnavailable
	g.NumberOfRentals++
	return nil
}

func (f fakeGames) MarkReturned(_ context.Context, id uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.games[id]
	if !ok || g.Status != model.GameUnavailable {
		return repository.ErrConflict
	}
	g.Status = model.GameAvailable
	return nil
}

type fakeRentals struct{ *memDB }

func (f fakeRentals) Create(_ context.Context, r *model.Rental) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateRental != nil {
		return f.failCreateRental
	}
	r.ID = f.id()
	cp := *r
	cp.Game = nil
	f.rentals[r.ID] = &cp
	return nil
}

func (f fakeRentals) GetByID(_ context.Context, id uint64) (*model.Rental, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rentals[id]
	if !ok {
		return nil, repository.ErrRentalNotFound
	}
	cp := *r
	return &cp, nil
}

func (f fakeRentals) MarkReturned(_ context.Context, id uint64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.rentals[id]
	if !ok || r.Status != model.RentalActive {
		return repository.ErrConflict
	}
	r.Status = model.RentalReturned
	r.ReturnDate = &at
	return nil
}

func (f fakeRentals) ListByUserAndStatus(_ context.Context, userID uint64, status model.RentalStatus) ([]model.RentalView, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.RentalView, 0)
	for _, r := range f.rentals {
		if r.UserID != userID || r.Status != status {
			continue
		}
		g := f.games[r.GameID]
		out = append(out, model.RentalView{
			ID:           r.ID,
			RentalStatus: r.Status,
			GameID:       g.ID,
			GameTitle:    g.Title,
			GameGenre:    g.Genre,
			GamePlatform: g.Platform,
			RentalDate:   r.RentalDate,
			ReturnDate:   r.ReturnDate,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].RentalDate.Equal(out[j].RentalDate) {
			return out[i].RentalDate.After(out[j].RentalDate)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// fakeTx snapshots the tables and restores them when fn fails, which is
// enough rollback behaviour for single-goroutine tests.
type fakeTx struct{ db *memDB }

func (t fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.db.mu.Lock()
	games := make(map[uint64]model.Game, len(t.db.games))
	for id, g := range t.db.games {
		games[id] = *g
	}
	rentals := make(map[uint64]model.Rental, len(t.db.rentals))
	for id, r := range t.db.rentals {
		rentals[id] = *r
	}
	t.db.mu.Unlock()

	if err := fn(ctx); err != nil {
		t.db.mu.Lock()
		defer t.db.mu.Unlock()
		for id, g := range games {
			g := g
			t.db.games[id] = &g
		}
		for id, r := range rentals {
			r := r
			t.db.rentals[id] = &r
		}
		for id := range t.db.rentals {
			if _, ok := rentals[id]; !ok {
				delete(t.db.rentals, id)
			}
		}
		return err
	}
	return nil
}

// passTx runs fn without snapshots; used by the concurrency test where
// restoring shared maps would race with the other renter.
type passTx struct{}

func (passTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }

// plainHasher stores passwords with a prefix so tests stay fast.
type plainHasher struct{}

func (plainHasher) Hash(p string) (string, error) { return "hashed:" + p, nil }
func (plainHasher) Verify(h, p string) bool       { return h == "hashed:"+p }

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.RentalEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.RentalEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) Events() []queue.RentalEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]queue.RentalEvent(nil), p.events...)
}

type countingObserver struct {
	mu          sync.Mutex
	transitions map[string]int
	failures    int
}

func (o *countingObserver) RentalTransition(event string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.transitions == nil {
		o.transitions = map[string]int{}
	}
	o.transitions[event]++
}

func (o *countingObserver) PublishFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failures++
}

var errBoom = errors.New("boom")

// env bundles a full service graph over one memDB.
type env struct {
	db        *memDB
	tokens    *utils.TokenService
	auth      *AuthService
	catalog   *CatalogService
	rentals   *RentalService
	publisher *recordingPublisher
	observer  *countingObserver
}

func newEnv() *env {
	db := newMemDB()
	tokens := utils.NewTokenService("test-secret", 60)
	auth := NewAuthService(fakeUsers{db}, plainHasher{}, tokens)
	catalog := NewCatalogService(auth, fakeGames{db})
	pub := &recordingPublisher{}
	obs := &countingObserver{}
	rentals := NewRentalService(auth, catalog, fakeRentals{db}, fakeTx{db}, pub, obs)
	rentals.now = func() time.Time {
		db.mu.Lock()
		defer db.mu.Unlock()
		db.clock = db.clock.Add(time.Minute)
		return db.clock
	}
	return &env{db: db, tokens: tokens, auth: auth, catalog: catalog, rentals: rentals, publisher: pub, observer: obs}
}
