package thread

// ApiCallFrame records one library-function invocation on a thread:
// arguments observed on entry and the return value(s) observed on exit.
// Frames form a per-thread stack; the top frame is the "current" call.
type ApiCallFrame struct {
	Func        uint32
	RetAddr     uint32
	Name        string
	CallArgs    []uint32
	CallStrings []string
	RetArgs     []uint32
	RetStrings  []string
}
