// Command coverkeep manages a local catalog of media cover images.
//
// gather stages covers for typed titles, copying catalog images when they
// already exist and searching the web otherwise. promote moves staged covers
// into the catalog and records book metadata. The metadata commands query,
// edit, import and export the book metadata document.
package main
