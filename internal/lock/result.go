package lock

// RejectCode classifies why a trigger was rejected. Rejections are local
// and non-fatal: aside from the unconditional sensor perturbation and
// failed-attempt counting, a rejected trigger leaves the engine unchanged.
type RejectCode string

// Rejection codes.
const (
	CodeOK                    RejectCode = "ok"
	CodeIllegalTransition     RejectCode = "illegal_transition"
	CodeLockedOut             RejectCode = "locked_out"
	CodeAuthenticationFailed  RejectCode = "authentication_failed"
	CodeInsufficientPrivilege RejectCode = "insufficient_privilege"
	CodeUnknownTrigger        RejectCode = "unknown_trigger"
	CodePreconditionUnmet     RejectCode = "precondition_unmet"
)

// Result is the outcome of a processed trigger. No errors cross the
// engine boundary; every operation reports success plus a human-readable
// message, with Code carrying the machine-readable rejection kind.
type Result struct {
	OK      bool       `json:"ok"`
	Code    RejectCode `json:"code"`
	Message string     `json:"message"`
}

// accepted builds a successful result.
func accepted(message string) Result {
	return Result{OK: true, Code: CodeOK, Message: message}
}

// rejected builds a failed result.
func rejected(code RejectCode, message string) Result {
	return Result{OK: false, Code: code, Message: message}
}
