// Package worker contains the job processing core: the dispatcher that
// routes claimed jobs to kind-specific handlers, the handlers themselves,
// and the processor that applies the claim/retry/failure policy around
// every handler invocation.
package worker
