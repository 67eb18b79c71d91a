// Package http exposes the ledger and settlement engine as a JSON API.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"bolsillo/internal/cache"
	"bolsillo/internal/core"
	"bolsillo/internal/middleware/ratelimit"
	"bolsillo/internal/middleware/security"
	"bolsillo/internal/middleware/trace"
	"bolsillo/internal/services"
	"bolsillo/internal/split"
	"bolsillo/internal/storage"
)

// Ledger is the record-side service surface the handlers use.
type Ledger interface {
	CreateRecord(ctx context.Context, rec core.Record) (string, error)
	ReplaceRecord(ctx context.Context, rec core.Record) error
	DeleteRecord(ctx context.Context, ownerID, id string) error
	Transfer(ctx context.Context, ownerID, fromPocketID, toPocketID string, amount core.Money, description string) (core.TransferPair, error)
	PayInstrument(ctx context.Context, ownerID, instrumentID string, amount core.Money) (core.Record, error)
	Overview(ctx context.Context, ownerID string) (services.Overview, error)
}

// Catalog is the storage surface for plain CRUD the handlers use directly.
type Catalog interface {
	RecordsByOwner(ctx context.Context, ownerID string) ([]core.Record, error)
	GetRecord(ctx context.Context, id string) (core.Record, error)

	CreatePocket(ctx context.Context, p core.Pocket) error
	GetPocket(ctx context.Context, ownerID, id string) (core.Pocket, error)
	PocketsByOwner(ctx context.Context, ownerID string) ([]core.Pocket, error)
	UpdatePocket(ctx context.Context, p core.Pocket) error
	DeletePocket(ctx context.Context, ownerID, id string) error

	CreateInstrument(ctx context.Context, in core.Instrument) error
	InstrumentsByOwner(ctx context.Context, ownerID string) ([]core.Instrument, error)
	DeleteInstrument(ctx context.Context, ownerID, id string) error

	CreateRecurringRule(ctx context.Context, rule core.RecurringRule) error
	RecurringRulesByOwner(ctx context.Context, ownerID string) ([]core.RecurringRule, error)
	DeleteRecurringRule(ctx context.Context, ownerID, id string) error
}

// Rooms is the settlement service surface the handlers use.
type Rooms interface {
	CreateRoom(ctx context.Context, name, creatorID string) (split.Room, error)
	JoinRoom(ctx context.Context, joinCode, memberID string) (split.Room, error)
	RoomsByMember(ctx context.Context, memberID string) ([]split.Room, error)
	Room(ctx context.Context, roomID string) (split.Room, error)
	AddExpense(ctx context.Context, roomID string, amount core.Money, payerID, createdByID string, shares map[string]int) (split.Expense, error)
	Expenses(ctx context.Context, roomID string) ([]split.Expense, error)
	DeleteExpense(ctx context.Context, roomID, expenseID string) error
	Settle(ctx context.Context, roomID string) (services.Settlement, error)
}

type Server struct {
	http.Server

	ledger  Ledger
	catalog Catalog
	rooms   Rooms

	rateLimiter   *ratelimit.Limiter
	overviewCache *cache.LRUCache[services.Overview]
	cacheManager  *cache.Manager

	stopInvalidate func()
	shutdownOnce   sync.Once
}

// Options tune the server beyond its dependencies.
type Options struct {
	SummaryCacheTTL     time.Duration
	SummaryCacheEntries int
}

func (o *Options) defaults() {
	if o.SummaryCacheTTL <= 0 {
		o.SummaryCacheTTL = 2 * time.Minute
	}
	if o.SummaryCacheEntries <= 0 {
		o.SummaryCacheEntries = 200
	}
}

// NewServer wires routes and middleware. The change feed may be nil; the
// summary cache then relies on TTL expiry alone.
func NewServer(addr string, ledger Ledger, catalog Catalog, rooms Rooms, feed *storage.ChangeFeed, opts Options) *Server {
	opts.defaults()
	mux := http.NewServeMux()

	s := &Server{
		ledger:        ledger,
		catalog:       catalog,
		rooms:         rooms,
		rateLimiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		overviewCache: cache.NewLRUCache[services.Overview](opts.SummaryCacheEntries, opts.SummaryCacheTTL),
		cacheManager:  cache.NewManager(),
	}
	s.cacheManager.Register(s.overviewCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	if feed != nil {
		changes, cancel := feed.Subscribe()
		s.stopInvalidate = cancel
		go s.invalidateLoop(changes)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("GET /api/owners/{owner}/summary", s.handleSummary)

	mux.HandleFunc("POST /api/owners/{owner}/records", s.handleCreateRecord)
	mux.HandleFunc("GET /api/owners/{owner}/records", s.handleListRecords)
	mux.HandleFunc("GET /api/owners/{owner}/records/{id}", s.handleGetRecord)
	mux.HandleFunc("PUT /api/owners/{owner}/records/{id}", s.handleReplaceRecord)
	mux.HandleFunc("DELETE /api/owners/{owner}/records/{id}", s.handleDeleteRecord)

	mux.HandleFunc("POST /api/owners/{owner}/transfers", s.handleTransfer)
	mux.HandleFunc("POST /api/owners/{owner}/instruments/{id}/payments", s.handlePayInstrument)

	mux.HandleFunc("POST /api/owners/{owner}/pockets", s.handleCreatePocket)
	mux.HandleFunc("GET /api/owners/{owner}/pockets", s.handleListPockets)
	mux.HandleFunc("PUT /api/owners/{owner}/pockets/{id}", s.handleUpdatePocket)
	mux.HandleFunc("DELETE /api/owners/{owner}/pockets/{id}", s.handleDeletePocket)

	mux.HandleFunc("POST /api/owners/{owner}/instruments", s.handleCreateInstrument)
	mux.HandleFunc("GET /api/owners/{owner}/instruments", s.handleListInstruments)
	mux.HandleFunc("DELETE /api/owners/{owner}/instruments/{id}", s.handleDeleteInstrument)

	mux.HandleFunc("POST /api/owners/{owner}/recurring-rules", s.handleCreateRule)
	mux.HandleFunc("GET /api/owners/{owner}/recurring-rules", s.handleListRules)
	mux.HandleFunc("DELETE /api/owners/{owner}/recurring-rules/{id}", s.handleDeleteRule)

	mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	mux.HandleFunc("POST /api/rooms/join", s.handleJoinRoom)
	mux.HandleFunc("GET /api/members/{member}/rooms", s.handleListRooms)
	mux.HandleFunc("GET /api/rooms/{id}", s.handleGetRoom)
	mux.HandleFunc("POST /api/rooms/{id}/expenses", s.handleAddExpense)
	mux.HandleFunc("GET /api/rooms/{id}/expenses", s.handleListExpenses)
	mux.HandleFunc("DELETE /api/rooms/{id}/expenses/{expense}", s.handleDeleteExpense)
	mux.HandleFunc("GET /api/rooms/{id}/settlement", s.handleSettlement)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(extractClientIP)
	limited := s.rateLimiter.Middleware(extractClientIP, nil)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           tracer.Middleware(headers.Middleware(limited(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// invalidateLoop drops an owner's cached summary whenever their record set
// changes, so a follow-up read re-folds immediately instead of waiting out
// the TTL.
func (s *Server) invalidateLoop(changes <-chan storage.Change) {
	for change := range changes {
		s.overviewCache.Delete(change.OwnerID)
	}
}

func (s *Server) cachedOverview(ctx context.Context, ownerID string) (services.Overview, error) {
	if ov, ok := s.overviewCache.Get(ownerID); ok {
		slog.DebugContext(ctx, "Summary cache hit", "owner_id", ownerID)
		return ov, nil
	}
	ov, err := s.ledger.Overview(ctx, ownerID)
	if err != nil {
		return services.Overview{}, err
	}
	s.overviewCache.Set(ownerID, ov)
	return ov, nil
}

// Shutdown stops background loops before closing the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.stopInvalidate != nil {
			s.stopInvalidate()
		}
		s.rateLimiter.Stop()
		s.cacheManager.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func extractClientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
