package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
	lock       sync.Mutex
}

// Context is the framework's equivalent of *testing.T. It implements require.TestingT, so the
// assert and require packages can be used with it directly.
type Context struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
	defers      []func()
	lock        sync.Mutex
}

// Subtest is a named test action for RunGroup.
type Subtest struct {
	Name   string
	Action func(*Context)
}

func Run(
	filter Filter,
	testLogger TestLogger,
	action func(*Context),
) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	c := &Context{env: env}
	c.run(action)
	return env.results
}

func (c *Context) run(action func(*Context)) {
	startTime := time.Now()
	defer func() {
		r := recover()
		c.runDeferred()
		if r != nil {
			c.handlePanic(r)
		}
		c.record(startTime)
	}()

	action(c)
}

// handlePanic turns a panic raised by the test into a failure. A panic with the Context itself
// comes from FailNow or Skip and needs no extra message.
func (c *Context) handlePanic(r interface{}) {
	if c.skipped {
		return
	}
	c.lock.Lock()
	c.failed = true
	var addError error
	if _, ok := r.(*Context); ok {
		if len(c.errors) == 0 {
			addError = errors.New("test failed with no failure message")
		}
	} else {
		addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
	}
	if addError != nil {
		c.errors = append(c.errors, addError)
	}
	c.lock.Unlock()
	if addError != nil {
		c.env.testLogger.TestError(c.id, addError)
	}
}

func (c *Context) record(startTime time.Time) {
	c.lock.Lock()
	result := TestResult{
		TestID:   c.id,
		Errors:   append([]error(nil), c.errors...),
		Skipped:  c.skipped,
		Duration: time.Since(startTime),
	}
	failed := c.failed
	c.lock.Unlock()

	// the root context only shows up in the results if something went wrong outside any subtest
	if len(c.id.Path) == 0 && !failed {
		return
	}
	c.env.lock.Lock()
	c.env.results.Tests = append(c.env.results.Tests, result)
	if failed {
		c.env.results.Failures = append(c.env.results.Failures, result)
	}
	c.env.lock.Unlock()
}

func (c *Context) runDeferred() {
	c.lock.Lock()
	defers := c.defers
	c.defers = nil
	c.lock.Unlock()
	for i := len(defers) - 1; i >= 0; i-- {
		c.runOneDeferred(defers[i])
	}
}

// runOneDeferred runs fn so that a failed assertion inside it fails the test without stopping
// the remaining deferred functions.
func (c *Context) runOneDeferred(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			c.handlePanic(r)
		}
	}()
	fn()
}

func (c *Context) ID() TestID {
	return c.id
}

// Run runs a subtest. It is safe to call Run from several goroutines on the same parent.
func (c *Context) Run(name string, action func(*Context)) {
	id := c.id.Plus(name)

	c.env.testLogger.TestStarted(id)
	if c.env.filter != nil && !c.env.filter(id) {
		c.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	c1 := &Context{
		id:  id,
		env: c.env,
	}
	c1.run(action)
	if c1.skipped {
		c.env.testLogger.TestSkipped(id, c1.skipReason)
	} else {
		c.env.testLogger.TestFinished(id, c1.failed, c1.debugLogger.Output())
	}
}

// RunGroup runs each subtest with at most concurrency of them active at a time. A concurrency
// of 1 or less runs them sequentially in the order given.
func (c *Context) RunGroup(concurrency int, subtests ...Subtest) {
	if concurrency <= 1 {
		for _, s := range subtests {
			c.Run(s.Name, s.Action)
		}
		return
	}
	var g errgroup.Group
	g.SetLimit(concurrency)
	for _, s := range subtests {
		s := s
		g.Go(func() error {
			c.Run(s.Name, s.Action)
			return nil
		})
	}
	_ = g.Wait()
}

func (c *Context) Errorf(format string, args ...interface{}) {
	err := fmt.Errorf(format, args...)
	c.lock.Lock()
	c.failed = true
	c.errors = append(c.errors, err)
	c.lock.Unlock()
	c.env.testLogger.TestError(c.id, err)
}

func (c *Context) Failed() bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.failed
}

func (c *Context) FailNow() {
	panic(c)
}

func (c *Context) Skip() {
	c.skipped = true
	panic(c)
}

func (c *Context) SkipWithReason(reason string) {
	c.skipReason = reason
	c.Skip()
}

// Defer schedules a function to run when the test ends, whether it passed or not. Deferred
// functions run in reverse order.
func (c *Context) Defer(fn func()) {
	c.lock.Lock()
	c.defers = append(c.defers, fn)
	c.lock.Unlock()
}

func (c *Context) Debug(message string, args ...interface{}) {
	c.debugLogger.Printf(message, args...)
}

func (c *Context) DebugLogger() Logger {
	return &c.debugLogger
}
