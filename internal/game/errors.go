package game

import "errors"

// Rejection categories. Concrete errors wrap one of these so callers can
// branch with errors.Is and still show the specific reason.
var (
	ErrIllegalMove        = errors.New("illegal move")
	ErrOutOfTurn          = errors.New("not your turn")
	ErrInvalidPassContext = errors.New("cannot pass")
	ErrSessionFault       = errors.New("session fault")
)

// Kind names the rejection category of err, or "" if it is not one of ours.
func KindOf(err error) string {
	switch {
	case errors.Is(err, ErrIllegalMove):
		return "illegal_move"
	case errors.Is(err, ErrOutOfTurn):
		return "out_of_turn"
	case errors.Is(err, ErrInvalidPassContext):
		return "invalid_pass_context"
	case errors.Is(err, ErrSessionFault):
		return "session_fault"
	}
	return ""
}
