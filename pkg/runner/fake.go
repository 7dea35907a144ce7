/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Call is one command recorded by Fake.
type Call struct {
	Host    string
	Command string
}

// Response is a scripted reply.
type Response struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

// Fake is a scripted Runner for tests. Replies are looked up by exact
// command first, then by the longest registered prefix. A command with a
// queued sequence consumes it in order and then keeps returning the last
// entry. Unknown commands exit 127 like a shell would.
type Fake struct {
	mu        sync.Mutex
	exact     map[string][]Response
	prefix    map[string][]Response
	calls     []Call
	OnCommand func(host, command string)
}

// NewFake creates an empty Fake.
func NewFake() *Fake {
	return &Fake{
		exact:  make(map[string][]Response),
		prefix: make(map[string][]Response),
	}
}

// On replies with stdout and exit 0 to command.
func (f *Fake) On(command, stdout string) *Fake {
	return f.OnResponse(command, Response{Stdout: stdout})
}

// OnResponse queues responses for an exact command.
func (f *Fake) OnResponse(command string, responses ...Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exact[command] = append(f.exact[command], responses...)
	return f
}

// OnPrefix queues responses for every command starting with prefix.
func (f *Fake) OnPrefix(prefix string, responses ...Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prefix[prefix] = append(f.prefix[prefix], responses...)
	return f
}

// Set replaces any queued responses for command.
func (f *Fake) Set(command string, responses ...Response) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.exact[command] = responses
	return f
}

// Run implements Runner.
func (f *Fake) Run(ctx context.Context, host, command string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	f.calls = append(f.calls, Call{Host: host, Command: command})
	resp, ok := f.next(command)
	hook := f.OnCommand
	f.mu.Unlock()

	if hook != nil {
		hook(host, command)
	}

	if !ok {
		return &Result{
			Host:     host,
			Command:  command,
			Stderr:   fmt.Sprintf("%s: command not found", commandName(command)),
			ExitCode: 127,
		}, nil
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	return &Result{
		Host:     host,
		Command:  command,
		Stdout:   resp.Stdout,
		Stderr:   resp.Stderr,
		ExitCode: resp.ExitCode,
	}, nil
}

// next pops the next response; caller holds mu.
func (f *Fake) next(command string) (Response, bool) {
	if q, ok := f.exact[command]; ok && len(q) > 0 {
		return pop(f.exact, command, q), true
	}

	prefixes := make([]string, 0, len(f.prefix))
	for p := range f.prefix {
		if strings.HasPrefix(command, p) && len(f.prefix[p]) > 0 {
			prefixes = append(prefixes, p)
		}
	}
	if len(prefixes) == 0 {
		return Response{}, false
	}
	sort.Slice(prefixes, func(i, j int) bool { return len(prefixes[i]) > len(prefixes[j]) })
	p := prefixes[0]
	return pop(f.prefix, p, f.prefix[p]), true
}

func pop(m map[string][]Response, key string, q []Response) Response {
	r := q[0]
	if len(q) > 1 {
		m[key] = q[1:]
	}
	return r
}

// Calls returns a copy of every recorded call.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}

// Commands returns the recorded command strings.
func (f *Fake) Commands() []string {
	calls := f.Calls()
	out := make([]string, 0, len(calls))
	for _, c := range calls {
		out = append(out, c.Command)
	}
	return out
}

// Count returns how many times command was run.
func (f *Fake) Count(command string) int {
	n := 0
	for _, c := range f.Calls() {
		if c.Command == command {
			n++
		}
	}
	return n
}

// CountPrefix returns how many recorded commands start with prefix.
func (f *Fake) CountPrefix(prefix string) int {
	n := 0
	for _, c := range f.Calls() {
		if strings.HasPrefix(c.Command, prefix) {
			n++
		}
	}
	return n
}

// Reset forgets recorded calls but keeps scripted responses.
func (f *Fake) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}
