// Package workspace holds the per-browser-context state of the terminal:
// the session, the carts and the services that act on them.
package workspace

import (
	"context"
	"log"
	"sync"
	"time"

	"pos_terminal/internal/apiclient"
	"pos_terminal/internal/cart"
	"pos_terminal/internal/catalog"
	"pos_terminal/internal/models"
	"pos_terminal/internal/service"
	"pos_terminal/internal/session"
	"pos_terminal/internal/store"
)

// Journal is the local transaction journal, read and written.
type Journal interface {
	service.Journal
	service.JournalReader
}

type Workspace struct {
	ID string

	Session      *session.Store
	API          *apiclient.Client
	Catalog      *catalog.Catalog
	Sales        *cart.Cart
	Rentals      *cart.Cart
	Returns      *cart.Selection
	Transactions *service.TransactionService
	Admin        *service.AdminService

	restoreOnce sync.Once

	mu       sync.Mutex
	lastSeen time.Time
}

func (w *Workspace) touch(now time.Time) {
	w.mu.Lock()
	w.lastSeen = now
	w.mu.Unlock()
}

func (w *Workspace) LastSeen() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastSeen
}

// Current is the active session, or nil.
func (w *Workspace) Current() *models.Session {
	return w.Session.Current()
}

// Login authenticates the context. The carts belong to one identity, so they
// are dropped unless the same employee logs in again.
func (w *Workspace) Login(ctx context.Context, username, password string) (*models.Session, error) {
	previous := w.Session.Current()
	sess, err := w.Session.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if previous == nil || previous.EmployeeID != sess.EmployeeID {
		w.clearCarts()
	}
	return sess, nil
}

// Logout ends the session and drops every cart of the workspace.
func (w *Workspace) Logout(ctx context.Context) error {
	err := w.Session.Logout(ctx)
	w.clearCarts()
	return err
}

func (w *Workspace) clearCarts() {
	w.Sales.Clear()
	w.Rentals.Clear()
	w.Returns.Clear()
}

type Options struct {
	KV        store.KV
	KeyPrefix string
	API       *apiclient.Client
	Journal   Journal
	IdleTTL   time.Duration
	Logger    *log.Logger
}

// Registry maps browser context ids to workspaces, creating them on first
// use.
type Registry struct {
	opts Options
	now  func() time.Time

	mu         sync.Mutex
	workspaces map[string]*Workspace
}

func NewRegistry(opts Options) *Registry {
	return &Registry{
		opts:       opts,
		now:        time.Now,
		workspaces: make(map[string]*Workspace),
	}
}

// Get returns the workspace for contextID. A new workspace restores its
// persisted session exactly once, outside the registry lock.
func (r *Registry) Get(ctx context.Context, contextID string) *Workspace {
	now := r.now()

	r.mu.Lock()
	ws, ok := r.workspaces[contextID]
	if !ok {
		ws = r.build(contextID)
		r.workspaces[contextID] = ws
	}
	r.mu.Unlock()

	ws.touch(now)
	ws.restoreOnce.Do(func() {
		ws.Session.Restore(ctx)
	})
	return ws
}

func (r *Registry) build(contextID string) *Workspace {
	logger := r.opts.Logger
	sess := session.NewStore(r.opts.KV, r.opts.KeyPrefix, contextID, r.opts.API, logger)
	api := r.opts.API.WithCredentials(sess)
	items := catalog.New(api, logger)

	var (
		journal       service.Journal
		journalReader service.JournalReader
	)
	if r.opts.Journal != nil {
		journal = r.opts.Journal
		journalReader = r.opts.Journal
	}

	return &Workspace{
		ID:           contextID,
		Session:      sess,
		API:          api,
		Catalog:      items,
		Sales:        cart.New(),
		Rentals:      cart.New(),
		Returns:      cart.NewSelection(),
		Transactions: service.NewTransactionService(logger, api, items, journal, sess),
		Admin:        service.NewAdminService(logger, api, items, journalReader),
	}
}

// Sweep evicts workspaces idle for longer than the configured TTL and
// returns how many were dropped. Persisted sessions are left in place.
func (r *Registry) Sweep(now time.Time) int {
	var evicted []*Workspace

	r.mu.Lock()
	for id, ws := range r.workspaces {
		if now.Sub(ws.LastSeen()) > r.opts.IdleTTL {
			delete(r.workspaces, id)
			evicted = append(evicted, ws)
		}
	}
	r.mu.Unlock()

	for _, ws := range evicted {
		ws.clearCarts()
	}
	return len(evicted)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workspaces)
}
