package engine

import (
	"context"

	"github.com/nadavh/aptwatch/internal/model"
)

// StreetMatcher answers whether a street is allow-listed within a city.
type StreetMatcher interface {
	Match(street, city string) model.StreetMatch
}

// Prompter defines the contract for operator interaction during processing.
// Every method blocks until the operator answers.
type Prompter interface {
	// ConfirmSend is the first approval gate, shown with the listing's
	// street and link. The match carries neighborhood context for display.
	ConfirmSend(ctx context.Context, listing *model.Listing, match model.StreetMatch) (bool, error)
	// ConfirmConstraint asks whether to proceed with a street that is
	// allowed only under a constraint. Declining skips the listing.
	ConfirmConstraint(ctx context.Context, listing *model.Listing, match model.StreetMatch) (bool, error)
	// ConfirmUnsupportedSkip asks whether to skip a listing whose street
	// is not on the allow-list. Answering no processes it anyway.
	ConfirmUnsupportedSkip(ctx context.Context, listing *model.Listing) (bool, error)
	// ConfirmFormat is the second approval gate, shown after enrichment
	// with the formatted notification line.
	ConfirmFormat(ctx context.Context, listing *model.Listing, formatted string) (bool, error)
	// NotifyAutoReject informs the operator that a listing was rejected
	// without prompting (top-floor policy).
	NotifyAutoReject(listing *model.Listing, reason string)
	// BatchProgress reports position within the current bucket.
	BatchProgress(bucket string, index, total int)
}
