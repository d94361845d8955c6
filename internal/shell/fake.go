package shell

import (
	"context"
	"strings"
)

// Call records one invocation made through a [Fake].
type Call struct {
	Dir  string
	Name string
	Args []string
}

// String renders the call as a command line.
func (c Call) String() string {
	return Display(c.Name, c.Args...)
}

// Fake is a [Runner] for tests. It records every call and answers from
// Outputs and Errors, keyed by the rendered command line.
type Fake struct {
	Calls   []Call
	Outputs map[string]string
	Errors  map[string]error
	// OnRun, when set, runs before the canned answer is returned.
	OnRun func(call Call) error
}

// Run records the call and returns the canned output or error.
func (f *Fake) Run(_ context.Context, dir, name string, args ...string) (string, error) {
	call := Call{Dir: dir, Name: name, Args: append([]string(nil), args...)}
	f.Calls = append(f.Calls, call)

	if f.OnRun != nil {
		if err := f.OnRun(call); err != nil {
			return "", err
		}
	}

	key := call.String()
	if err, ok := f.Errors[key]; ok {
		return "", err
	}
	return strings.TrimSpace(f.Outputs[key]), nil
}

// Commands returns every recorded call rendered as a command line.
func (f *Fake) Commands() []string {
	out := make([]string, len(f.Calls))
	for i, c := range f.Calls {
		out[i] = c.String()
	}
	return out
}
