package library

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"steamshelf/internal/steam"
	"steamshelf/internal/steaminput"
	"steamshelf/pkg/models"
)

// SteamAPI is the slice of the Steam client the workflow needs.
// *steam.Client satisfies it; tests stub it.
type SteamAPI interface {
	ResolveVanity(ctx context.Context, name string) (string, error)
	OwnedGames(ctx context.Context, steamID64 string) (steam.OwnedGamesResult, error)
	PlayerSummary(ctx context.Context, steamID64 string) (steam.RawPlayerSummary, error)
}

// State names the workflow's position in a lookup run.
type State string

const (
	StateIdle            State = "idle"
	StateResolving       State = "resolving"
	StateVanityLookup    State = "vanity_lookup"
	StateFetchingLibrary State = "fetching_library"
	StateSucceeded       State = "succeeded"
	StateFailed          State = "failed"
)

// Failure ties a client-facing error code to its underlying cause.
type Failure struct {
	Code models.ErrorCode
	Err  error
}

func (f *Failure) Error() string {
	if f.Err != nil {
		return string(f.Code) + ": " + f.Err.Error()
	}
	return string(f.Code)
}

func (f *Failure) Unwrap() error { return f.Err }

// Result is a successful library lookup.
type Result struct {
	SteamID64 string
	VanityURL string // vanity name that resolved to the id, "" for direct ids
	Games     []models.Game
	GameCount int
	Profile   models.Profile
}

// Workflow runs the full lookup: parse input, resolve a vanity name if
// needed, fetch owned games and player summary together, normalize.
// It remembers the last input that failed so callers can disable
// resubmission of a known-bad value.
type Workflow struct {
	api SteamAPI

	mu              sync.Mutex
	state           State
	lastFailedInput string
}

func NewWorkflow(api SteamAPI) *Workflow {
	return &Workflow{api: api, state: StateIdle}
}

func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// LastFailedInput returns the raw input of the most recent failed run,
// or "" after a success.
func (w *Workflow) LastFailedInput() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastFailedInput
}

func (w *Workflow) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
}

func (w *Workflow) fail(rawInput string, f *Failure) (*Result, error) {
	w.mu.Lock()
	w.state = StateFailed
	w.lastFailedInput = rawInput
	w.mu.Unlock()
	return nil, f
}

// FetchLibrary runs one lookup for rawInput. Errors are always
// *Failure; the code taxonomy is fixed:
//
//	INVALID_INPUT_FORMAT  input rejected locally, no network touched
//	VANITY_NOT_FOUND      resolution found no profile
//	PROFILE_PRIVATE       owned-games response had no games field
//	EMPTY_LIBRARY         games field present but empty
//	STEAM_API_ERROR       transport / upstream failure on any stage
//	RATE_LIMITED          upstream told us to back off
func (w *Workflow) FetchLibrary(ctx context.Context, rawInput string) (*Result, error) {
	w.setState(StateResolving)

	parsed, ok := steaminput.Parse(rawInput)
	if !ok {
		return w.fail(rawInput, &Failure{Code: models.ErrInvalidInputFormat})
	}

	steamID64 := parsed.SteamID64
	vanity := ""

	if parsed.NeedsResolution() {
		w.setState(StateVanityLookup)
		vanity = parsed.Value

		id, err := w.api.ResolveVanity(ctx, parsed.Value)
		if err != nil {
			return w.fail(rawInput, &Failure{Code: steam.CodeOf(err), Err: err})
		}
		steamID64 = id
	}

	w.setState(StateFetchingLibrary)

	// Both requests in flight at once; the UI needs games and profile
	// together, so either failure fails the run.
	var (
		owned   steam.OwnedGamesResult
		summary steam.RawPlayerSummary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		owned, err = w.api.OwnedGames(gctx, steamID64)
		return err
	})
	g.Go(func() error {
		var err error
		summary, err = w.api.PlayerSummary(gctx, steamID64)
		return err
	})
	if err := g.Wait(); err != nil {
		return w.fail(rawInput, &Failure{Code: steam.CodeOf(err), Err: err})
	}

	// A 200 without a games collection is Steam's way of saying the
	// profile is private. Present but empty is a real empty library.
	if !owned.GamesPresent {
		return w.fail(rawInput, &Failure{Code: models.ErrProfilePrivate})
	}
	if len(owned.Games) == 0 {
		return w.fail(rawInput, &Failure{Code: models.ErrEmptyLibrary})
	}

	games, count := steam.NormalizeOwnedGames(owned)
	profile := steam.NormalizeProfile(summary)

	w.mu.Lock()
	w.state = StateSucceeded
	w.lastFailedInput = ""
	w.mu.Unlock()

	return &Result{
		SteamID64: steamID64,
		VanityURL: vanity,
		Games:     games,
		GameCount: count,
		Profile:   profile,
	}, nil
}
