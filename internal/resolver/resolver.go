// Package resolver orchestrates conflict resolution: it ties the
// inventory scanner, the file store, and the diff engine together
// behind the two operations the presentation layer calls, and owns the
// ordered delete-then-rename protocol with its partial-failure
// reporting.
package resolver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/syncmend/syncmend/internal/diffview"
	"github.com/syncmend/syncmend/internal/failure"
	"github.com/syncmend/syncmend/internal/history"
	"github.com/syncmend/syncmend/internal/inventory"
	"github.com/syncmend/syncmend/internal/store"
)

//go:generate mockgen -source=resolver.go -destination=mock_resolver_test.go -package=resolver

// Action is a user-chosen outcome for a conflict group.
type Action string

const (
	// AcceptChosen keeps the chosen variant: the original is deleted,
	// then the variant is renamed to the original's path.
	AcceptChosen Action = "accept-chosen"
	// AcceptOriginal keeps the original: the chosen variant is deleted.
	AcceptOriginal Action = "accept-original"
	// Manual defers to human review; nothing is mutated.
	Manual Action = "manual"
)

// State is the controller's view of a conflict group.
type State string

const (
	// StateOpen means no resolution is in progress.
	StateOpen State = "open"
	// StateResolutionChosen means an action was accepted and validated
	// but no file has been touched yet.
	StateResolutionChosen State = "resolution-chosen"
	// StateResolving means a mutation sequence is in flight.
	StateResolving State = "resolving"
	// StateResolved means the group was resolved successfully.
	StateResolved State = "resolved"
	// StateFailedPartial means the delete step succeeded but the
	// rename step failed. Terminal until the group is re-scanned:
	// on-disk state no longer matches the in-memory group, so a blind
	// retry could destroy data.
	StateFailedPartial State = "failed-partial"
)

// FileStore is the subset of the file store the resolver needs.
type FileStore interface {
	ListFiles() ([]store.FileRef, error)
	ReadFile(relPath string) ([]byte, error)
	DeleteFile(relPath string) error
	Rename(oldRel, newRel string) error
}

// Notifier receives progress notifications. Mutation steps announce
// themselves before and after, so a slow store operation is visibly in
// flight. This is an observability contract, not a correctness one.
type Notifier interface {
	Notify(message string, duration time.Duration)
}

// Historian records terminal resolution outcomes.
type Historian interface {
	Append(rec history.Record) error
}

// ConflictView is what GetDiffFiles returns: the file to diff against
// plus the conflicting variants.
type ConflictView struct {
	// Base is the original file, or the promoted stand-in when the
	// original is gone.
	Base store.FileRef
	// Conflicts holds the variants to compare against Base, oldest
	// first.
	Conflicts []store.FileRef
	// Promoted is true when the original was missing and the oldest
	// surviving variant was promoted to Base.
	Promoted bool
}

// Controller is the conflict resolution controller. Safe for
// concurrent use; resolutions are serialized per conflict group.
type Controller struct {
	store     FileStore
	notifier  Notifier
	historian Historian
	logger    *slog.Logger
	notifyDur time.Duration

	mu     sync.Mutex
	states map[string]State
	locks  map[string]*sync.Mutex
}

// Option configures a Controller.
type Option func(*Controller)

// WithHistorian wires a resolution history log.
func WithHistorian(h Historian) Option {
	return func(c *Controller) { c.historian = h }
}

// WithNotifyDuration sets how long progress notifications are shown.
func WithNotifyDuration(d time.Duration) Option {
	return func(c *Controller) { c.notifyDur = d }
}

// New creates a Controller over the given collaborators.
func New(fileStore FileStore, notifier Notifier, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		store:     fileStore,
		notifier:  notifier,
		logger:    logger,
		notifyDur: 4 * time.Second,
		states:    make(map[string]State),
		locks:     make(map[string]*sync.Mutex),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// ScanConflicts re-lists the store and returns the conflicted groups.
func (c *Controller) ScanConflicts(ctx context.Context) ([]inventory.ConflictGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, failure.Wrap(failure.Filesystem, err, "scan cancelled")
	}

	files, err := c.store.ListFiles()
	if err != nil {
		return nil, failure.Wrap(failure.Filesystem, err, "listing stored files")
	}

	groups := inventory.Conflicted(inventory.ScanGroups(files))

	// A fresh scan observed on-disk state, which lifts all
	// failed-partial poisoning: a vanished group needs no state, and a
	// surviving group is returned with current refs, so resolving it
	// again acts on what is actually on disk.
	c.mu.Lock()
	for key, state := range c.states {
		if state == StateFailedPartial {
			delete(c.states, key)
		}
	}
	c.mu.Unlock()

	return groups, nil
}

// GetDiffFiles resolves the conflict group the given file belongs to
// and returns the base file plus its conflicting variants. Diffing is
// a local file-content operation; nothing is fetched from the daemon.
// Returns a not-found Failure when the file belongs to no conflict
// group.
func (c *Controller) GetDiffFiles(ctx context.Context, path string) (*ConflictView, error) {
	files, err := c.store.ListFiles()
	if err != nil {
		return nil, failure.Wrap(failure.Filesystem, err, "listing stored files")
	}

	groups := inventory.ScanGroups(files)

	group, ok := inventory.FindGroup(groups, path)
	if !ok || !group.IsConflicted() {
		return nil, failure.New(failure.NotFound, "%s belongs to no conflict group", path)
	}

	// A successful re-scan of the group observes current on-disk
	// state, which lifts failed-partial poisoning.
	c.mu.Lock()
	if c.states[group.Base] == StateFailedPartial {
		delete(c.states, group.Base)
	}
	c.mu.Unlock()

	if group.Original != nil {
		return &ConflictView{Base: *group.Original, Conflicts: group.Conflicts}, nil
	}

	// The original is gone (already resolved or deleted elsewhere).
	// Promote the oldest surviving variant to stand in as the base:
	// conflicts are ordered oldest first, and the oldest variant is
	// the closest ancestor of the vanished original.
	return &ConflictView{
		Base:      group.Conflicts[0],
		Conflicts: group.Conflicts[1:],
		Promoted:  true,
	}, nil
}

// DiffVariant reads the view's base and the i-th conflict variant and
// computes their line diff.
func (c *Controller) DiffVariant(ctx context.Context, view *ConflictView, i int) (diffview.Result, error) {
	if i < 0 || i >= len(view.Conflicts) {
		return diffview.Result{}, failure.New(failure.NotFound, "conflict variant %d out of range (group has %d)", i, len(view.Conflicts))
	}

	if err := ctx.Err(); err != nil {
		return diffview.Result{}, failure.Wrap(failure.Filesystem, err, "diff cancelled")
	}

	baseContent, err := c.store.ReadFile(view.Base.Path)
	if err != nil {
		return diffview.Result{}, failure.Wrap(failure.Filesystem, err, "reading %s", view.Base.Path)
	}

	variant := view.Conflicts[i]

	variantContent, err := c.store.ReadFile(variant.Path)
	if err != nil {
		return diffview.Result{}, failure.Wrap(failure.Filesystem, err, "reading %s", variant.Path)
	}

	return diffview.Diff(view.Base.Path, variant.Path, string(baseContent), string(variantContent)), nil
}

// GroupState returns the controller's current state for a group key.
func (c *Controller) GroupState(key string) State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state, ok := c.states[key]; ok {
		return state
	}

	return StateOpen
}

// groupLock returns the per-group mutex, creating it on first use.
// The per-key lock is explicit rather than relying on single-threaded
// scheduling: the delete-then-rename sequence is not atomic, and two
// resolutions racing on the same target path could both mutate it.
func (c *Controller) groupLock(key string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()

	lock, ok := c.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[key] = lock
	}

	return lock
}

func (c *Controller) setState(key string, state State) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state == StateOpen {
		delete(c.states, key)
		return
	}

	c.states[key] = state
}

func (c *Controller) notify(format string, args ...any) {
	if c.notifier == nil {
		return
	}

	c.notifier.Notify(fmt.Sprintf(format, args...), c.notifyDur)
}

func (c *Controller) record(rec history.Record) {
	if c.historian == nil {
		return
	}

	if err := c.historian.Append(rec); err != nil {
		c.logger.Warn("recording resolution outcome",
			slog.String("group", rec.Group),
			slog.String("error", err.Error()),
		)
	}
}

// Resolve applies a resolution action to a conflict group. Resolutions
// for the same group are serialized; different groups may resolve
// concurrently. Once the delete step has been issued the sequence
// cannot be cancelled: a delete is not reversible, and aborting
// mid-sequence would leave the same partial state a rename failure
// does.
func (c *Controller) Resolve(ctx context.Context, group inventory.ConflictGroup, chosen store.FileRef, action Action) error {
	key := group.Base

	lock := c.groupLock(key)
	lock.Lock()
	defer lock.Unlock()

	if state := c.GroupState(key); state == StateFailedPartial {
		return failure.New(failure.Filesystem,
			"group %s is in a failed-partial state; re-scan the store before resolving", key)
	}

	if action != Manual && !containsRef(group.Conflicts, chosen.Path) {
		return failure.New(failure.NotFound, "%s is not a conflict variant of %s", chosen.Path, key)
	}

	// Last cancellation point. Past here the sequence runs to its end.
	if err := ctx.Err(); err != nil {
		return failure.Wrap(failure.Filesystem, err, "resolution cancelled before mutation")
	}

	switch action {
	case AcceptChosen:
		c.setState(key, StateResolutionChosen)
		return c.acceptChosen(key, group, chosen)
	case AcceptOriginal:
		c.setState(key, StateResolutionChosen)
		return c.acceptOriginal(key, group, chosen)
	case Manual:
		c.logger.Info("manual review requested", slog.String("group", key))
		c.notify("Opening %s and %s for manual review", key, chosen.Path)
		c.record(history.Record{
			Group:   key,
			Action:  string(Manual),
			Chosen:  chosen.Path,
			Outcome: "manual",
		})

		return nil
	default:
		return failure.New(failure.NotFound, "unknown resolution action %q", action)
	}
}

// acceptChosen deletes the original, then renames the chosen variant to
// the original's path. Delete-then-rename, in that order, so the target
// path is free before the rename. If the delete succeeds and the rename
// fails there is no rollback: the store offers no transactional
// guarantee, so the controller reports both paths and leaves recovery
// to the user.
func (c *Controller) acceptChosen(key string, group inventory.ConflictGroup, chosen store.FileRef) error {
	c.setState(key, StateResolving)

	if group.Original != nil {
		c.notify("Deleting %s", group.Original.Path)
		c.logger.Info("deleting original", slog.String("path", group.Original.Path))

		if err := c.store.DeleteFile(group.Original.Path); err != nil {
			// Nothing was mutated; the group is still intact.
			c.setState(key, StateOpen)
			return failure.Wrap(failure.Filesystem, err, "deleting original %s", group.Original.Path)
		}

		c.notify("Deleted %s", group.Original.Path)
	}

	c.notify("Renaming %s to %s", chosen.Path, key)
	c.logger.Info("renaming variant",
		slog.String("from", chosen.Path),
		slog.String("to", key),
	)

	if err := c.store.Rename(chosen.Path, key); err != nil {
		if group.Original == nil {
			// No delete happened, so nothing was mutated and the
			// group is still intact.
			c.setState(key, StateOpen)
			return failure.Wrap(failure.Filesystem, err, "renaming %s to %s", chosen.Path, key)
		}

		c.setState(key, StateFailedPartial)

		fail := failure.Wrap(failure.Filesystem, err,
			"original %s was deleted but renaming %s to %s failed; both paths need manual attention",
			key, chosen.Path, key)

		c.record(history.Record{
			Group:    key,
			Action:   string(AcceptChosen),
			Chosen:   chosen.Path,
			Original: key,
			Outcome:  "failed-partial",
			Detail:   fail.Message,
		})

		return fail
	}

	c.notify("Renamed %s to %s", chosen.Path, key)
	c.setState(key, StateResolved)
	c.record(history.Record{
		Group:    key,
		Action:   string(AcceptChosen),
		Chosen:   chosen.Path,
		Original: key,
		Outcome:  "resolved",
	})

	return nil
}

// acceptOriginal deletes the chosen variant; the original is untouched.
func (c *Controller) acceptOriginal(key string, group inventory.ConflictGroup, chosen store.FileRef) error {
	c.setState(key, StateResolving)

	c.notify("Deleting %s", chosen.Path)
	c.logger.Info("deleting variant", slog.String("path", chosen.Path))

	if err := c.store.DeleteFile(chosen.Path); err != nil {
		c.setState(key, StateOpen)
		return failure.Wrap(failure.Filesystem, err, "deleting variant %s", chosen.Path)
	}

	c.notify("Deleted %s", chosen.Path)

	// Resolved only when this was the last variant; otherwise the
	// group is still open with the remaining conflicts.
	if len(group.Conflicts) > 1 {
		c.setState(key, StateOpen)
	} else {
		c.setState(key, StateResolved)
	}

	c.record(history.Record{
		Group:    key,
		Action:   string(AcceptOriginal),
		Chosen:   chosen.Path,
		Original: key,
		Outcome:  "resolved",
	})

	return nil
}

func containsRef(refs []store.FileRef, path string) bool {
	for _, ref := range refs {
		if ref.Path == path {
			return true
		}
	}

	return false
}
