// Package bucket maps a (subjectID, experimentID) pair onto a small closed
// set of variant labels deterministically, giving a stable, approximately
// uniform split without server-side assignment storage.
package bucket
