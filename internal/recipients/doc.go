// Package recipients turns free-form pasted or uploaded text into a clean,
// deduplicated recipient list and checks that a campaign is ready to save.
//
// Everything here is a pure transform except the file read, which is
// serialized by Importer so that two imports never race on editor state.
package recipients
