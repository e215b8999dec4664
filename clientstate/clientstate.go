// ABOUTME: Client-side session context as an explicit state machine
// ABOUTME: Pure transitions over Loading/Anonymous/Authenticated plus a subscribable store

package clientstate

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/duospend/gateway/client"
	"github.com/duospend/gateway/models"
)

// Status is the authentication state of the session context.
type Status string

const (
	StatusLoading       Status = "loading"
	StatusAnonymous     Status = "anonymous"
	StatusAuthenticated Status = "authenticated"
)

// State is an immutable snapshot of the session context.
type State struct {
	Status Status
	User   *models.Identity
}

// IsAuthenticated reports whether a user is signed in.
func (s State) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// Loading reports whether an auth action is in flight.
func (s State) Loading() bool {
	return s.Status == StatusLoading
}

// EventKind enumerates the inputs of the state machine.
type EventKind int

const (
	// EventLoadBegan marks the start of any auth action.
	EventLoadBegan EventKind = iota
	// EventSignedIn carries a resolved identity.
	EventSignedIn
	// EventSignedOut marks an ended or absent session.
	EventSignedOut
	// EventLoadFailed returns to the previous resolution after a failed
	// action.
	EventLoadFailed
)

// Event is one input to Transition.
type Event struct {
	Kind EventKind
	User *models.Identity
}

// Transition is the pure state function of the session context. It holds
// every rule about how authentication state may change, independent of
// any transport or UI.
func Transition(s State, ev Event) State {
	switch ev.Kind {
	case EventLoadBegan:
		// Keep the last known user visible while loading so UIs don't
		// flash to anonymous during a refresh.
		return State{Status: StatusLoading, User: s.User}
	case EventSignedIn:
		if ev.User == nil {
			return State{Status: StatusAnonymous}
		}
		return State{Status: StatusAuthenticated, User: ev.User}
	case EventSignedOut:
		return State{Status: StatusAnonymous}
	case EventLoadFailed:
		if s.User != nil {
			return State{Status: StatusAuthenticated, User: s.User}
		}
		return State{Status: StatusAnonymous}
	default:
		return s
	}
}

// Store drives the state machine with actions that call only the gateway
// endpoints through the injected client. It holds no tokens and no
// ambient global state.
type Store struct {
	api *client.Client

	mu      sync.RWMutex
	state   State
	subs    map[int]func(State)
	nextSub int
}

// NewStore creates a session context over the given gateway client,
// starting anonymous. Call Load to resolve any existing cookie session.
func NewStore(api *client.Client) *Store {
	return &Store{
		api:   api,
		state: State{Status: StatusAnonymous},
		subs:  make(map[int]func(State)),
	}
}

// State returns the current snapshot.
func (st *Store) State() State {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state
}

// Subscribe registers fn for every state change and returns a cancel
// function. fn is called outside the store lock.
func (st *Store) Subscribe(fn func(State)) func() {
	st.mu.Lock()
	id := st.nextSub
	st.nextSub++
	st.subs[id] = fn
	st.mu.Unlock()

	return func() {
		st.mu.Lock()
		delete(st.subs, id)
		st.mu.Unlock()
	}
}

// Load resolves the current session (if cookies exist) into state.
// A 401 is a normal anonymous outcome, not an error.
func (st *Store) Load(ctx context.Context) error {
	st.apply(Event{Kind: EventLoadBegan})

	user, err := st.api.Me(ctx)
	if err != nil {
		var apiErr *client.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			st.apply(Event{Kind: EventSignedOut})
			return nil
		}
		st.apply(Event{Kind: EventLoadFailed})
		return err
	}

	st.apply(Event{Kind: EventSignedIn, User: user})
	return nil
}

// Login signs in and updates state from the returned identity.
func (st *Store) Login(ctx context.Context, emailOrUsername, password string) error {
	st.apply(Event{Kind: EventLoadBegan})

	user, err := st.api.Login(ctx, emailOrUsername, password)
	if err != nil {
		st.apply(Event{Kind: EventLoadFailed})
		return err
	}

	st.apply(Event{Kind: EventSignedIn, User: user})
	return nil
}

// Register creates an account and signs the new user in.
func (st *Store) Register(ctx context.Context, req models.RegisterRequest) error {
	st.apply(Event{Kind: EventLoadBegan})

	user, err := st.api.Register(ctx, req)
	if err != nil {
		st.apply(Event{Kind: EventLoadFailed})
		return err
	}

	st.apply(Event{Kind: EventSignedIn, User: user})
	return nil
}

// Logout ends the session. State converges to anonymous regardless of
// transport outcome, mirroring the gateway's logout guarantee.
func (st *Store) Logout(ctx context.Context) error {
	st.apply(Event{Kind: EventLoadBegan})

	err := st.api.Logout(ctx)
	st.apply(Event{Kind: EventSignedOut})
	return err
}

// apply advances the machine and notifies subscribers with the new
// snapshot.
func (st *Store) apply(ev Event) {
	st.mu.Lock()
	st.state = Transition(st.state, ev)
	snapshot := st.state
	subs := make([]func(State), 0, len(st.subs))
	for _, fn := range st.subs {
		subs = append(subs, fn)
	}
	st.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
