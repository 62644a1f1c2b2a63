// Package lock provides keyed mutual exclusion for the ticket
// find-or-create path. Every read-then-create sequence runs under the lock
// for its (tenant, contact, connection, entry source) key so concurrent
// webhook bursts cannot create duplicate tickets.
package lock

import (
	"context"
	"fmt"

	"github.com/zapdesk-io/zapdesk/internal/models"
)

// TicketLocker acquires exclusive ownership of a key, waiting at most the
// implementation's configured timeout. The returned release function must
// be called on every exit path; it is safe to call more than once.
type TicketLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// TicketKey builds the lock key for a ticket creation sequence.
func TicketKey(tenantID, contactID, whatsappID uint, entrySource string) string {
	return fmt.Sprintf("ticket:%d:%d:%d:%s", tenantID, contactID, whatsappID, entrySource)
}

// ErrLockTimeout is re-exported so callers need not import models for the
// common case.
var ErrLockTimeout = models.ErrLockTimeout
