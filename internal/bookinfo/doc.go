// Package bookinfo looks up suggested book metadata from the Google Books
// volumes API to prefill metadata prompts.
package bookinfo
