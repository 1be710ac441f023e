// Package quota keeps the per-day count of image search requests so the user
// can watch the search API's free daily allowance.
package quota
