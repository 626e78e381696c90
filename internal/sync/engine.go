// Package sync keeps local working copies of client records in step with
// the authoritative store.
//
// A Session loads a partner's clients, hands out one WorkingCopy per record
// and re-resolves cached positions. Changes are structured Commands applied
// to a working copy without I/O; Commit writes the whole record back and
// adopts what the store returns. Every commit carries the record revision
// unless the session runs Unconditional, in which case the last writer wins.
package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/Werneck0live/pipeline-crm/internal/models"
)

// Store is what the engine reads from and writes to. apiclient.Client,
// repository.ClientRepository and repository.Memory satisfy it.
type Store interface {
	ListForPartner(ctx context.Context, partnerName string) ([]models.ClientRecord, error)
	Replace(ctx context.Context, id string, p models.ClientPatch) (*models.ClientRecord, error)
}

var (
	ErrStalePosition  = errors.New("position is outside the loaded client list")
	ErrCommitInFlight = errors.New("a commit for this client is in flight")
	ErrStaleEdit      = errors.New("client was reloaded or saved since editing started")
	ErrNotLoaded      = errors.New("session has not been loaded")
)

// ClientRef is a position captured at load time together with the id that
// was there, so a later use can tell whether the list moved underneath it.
type ClientRef struct {
	Position int    `json:"position"`
	ID       string `json:"id"`
}

func (r ClientRef) String() string {
	return fmt.Sprintf("#%d(%s)", r.Position, r.ID)
}
