package broadcast

import (
	"errors"

	"tgblast/internal/transport"
)

// Kind tags the outcome of one delivery attempt.
type Kind uint8

const (
	KindSuccess Kind = iota
	KindDryRun
	// KindUnreachable: the recipient blocked the bot or the chat is gone.
	KindUnreachable
	// KindBadRequest: the API rejected the payload or chat ID.
	KindBadRequest
	// KindNetwork: connection or timeout failure.
	KindNetwork
	// KindAPI: a typed provider error that fits no other bucket.
	KindAPI
	// KindUnknown: anything else.
	KindUnknown
)

// Failed reports whether the kind counts toward the failure tally.
func (k Kind) Failed() bool {
	return k != KindSuccess && k != KindDryRun
}

// Status returns the stable short string used in exports and storage.
func (k Kind) Status() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindDryRun:
		return "dry_run"
	case KindUnreachable:
		return "forbidden"
	case KindBadRequest:
		return "bad_request"
	case KindNetwork:
		return "network_error"
	case KindAPI:
		return "telegram_error"
	default:
		return "error"
	}
}

// KindFromStatus is the inverse of Kind.Status, for rehydrating stored
// results. Unrecognized strings map to KindUnknown.
func KindFromStatus(s string) Kind {
	switch s {
	case "success":
		return KindSuccess
	case "dry_run":
		return KindDryRun
	case "forbidden":
		return KindUnreachable
	case "bad_request":
		return KindBadRequest
	case "network_error":
		return KindNetwork
	case "telegram_error":
		return KindAPI
	default:
		return KindUnknown
	}
}

// Outcome is the immutable result of one delivery attempt.
type Outcome struct {
	Kind   Kind
	Detail string
}

// Result pairs a recipient with its outcome.
type Result struct {
	ChatID  string
	Outcome Outcome
}

// Payload is the immutable message to broadcast. If Image is non-empty the
// send path is photo-with-caption, otherwise a plain text message.
type Payload struct {
	Text  string
	Image []byte
}

func success() Outcome { return Outcome{Kind: KindSuccess, Detail: "success"} }
func dryRun() Outcome  { return Outcome{Kind: KindDryRun, Detail: "dry_run"} }

// failure classifies a sender error into an Outcome. Per-recipient errors
// never cross this boundary as errors; they become data here.
func failure(err error) Outcome {
	kind := KindUnknown
	switch {
	case errors.Is(err, transport.ErrUnreachable):
		kind = KindUnreachable
	case errors.Is(err, transport.ErrBadRequest):
		kind = KindBadRequest
	case errors.Is(err, transport.ErrNetwork):
		kind = KindNetwork
	case errors.Is(err, transport.ErrAPI):
		kind = KindAPI
	}
	return Outcome{Kind: kind, Detail: err.Error()}
}

// Totals counts outcomes by bucket. The tally is a pure function of the
// outcomes, independent of completion order.
func Totals(results []Result) (sent, failed, dry int) {
	for _, r := range results {
		switch {
		case r.Outcome.Kind == KindSuccess:
			sent++
		case r.Outcome.Kind == KindDryRun:
			dry++
		default:
			failed++
		}
	}
	return sent, failed, dry
}
