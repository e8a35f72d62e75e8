// Package api implements the worker's HTTP surface: the cron-triggered
// processing entrypoint, the job enqueue seam, and shared response helpers.
// All /api routes are guarded by a shared-secret middleware.
package api
