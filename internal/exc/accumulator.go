// © 2023 Microglot LLC
//
// SPDX-License-Identifier: Apache-2.0

package exc

import "sync"

// Reporter collects exceptions raised while a source is processed. Stages
// that cannot return an error directly, such as token iterators, report
// into a Reporter and stop producing values. The caller then inspects the
// Reporter once the stage is drained.
//
// Every code is fatal unless listed as non-fatal when the Reporter is
// created. The front end runs with no non-fatal codes, so the first report
// ends the run.
type Reporter interface {
	// Report adds the given record to the set. If this method returns an error
	// then the given error is considered fatal.
	Report(Exception) Exception
	// Reported returns the set of accumulated exceptions.
	Reported() []Exception
}

// NewReporter returns a concurrent-safe implementation of Reporter.
func NewReporter(nonFatal []string) Reporter {
	nf := make(map[string]bool, len(defaultNonFatal)+len(nonFatal))
	for k := range defaultNonFatal {
		nf[k] = true
	}
	for _, k := range nonFatal {
		nf[k] = true
	}
	return &reporterLock{
		Reporter: &reporter{
			nonFatal: nf,
		},
		lock: &sync.Mutex{},
	}
}

// FirstFatal returns the earliest fatal exception in the Reporter, or nil.
func FirstFatal(r Reporter, nonFatal ...string) Exception {
	skip := make(map[string]bool, len(nonFatal))
	for _, code := range nonFatal {
		skip[code] = true
	}
	for _, e := range r.Reported() {
		if !skip[e.Code()] && !defaultNonFatal[e.Code()] {
			return e
		}
	}
	return nil
}

type reporter struct {
	reported []Exception
	nonFatal map[string]bool
}

func (r *reporter) Report(e Exception) Exception {
	r.reported = append(r.reported, e)
	if r.nonFatal[e.Code()] {
		return nil
	}
	return e
}

func (r *reporter) Reported() []Exception {
	out := make([]Exception, len(r.reported))
	copy(out, r.reported)
	return out
}

type reporterLock struct {
	Reporter
	lock sync.Locker
}

func (r *reporterLock) Report(e Exception) Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Report(e)
}

func (r *reporterLock) Reported() []Exception {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.Reporter.Reported()
}
