// internal/model/models.go
package model

// StarredRepo is one repository from the authenticated user's starred set
// on the source platform. Name is the reconciliation join key.
type StarredRepo struct {
	Name  string
	Owner string
	URL   string

	// Observed freshness signals. Nil until a per-repo lookup observes
	// them; the starred-set fetch does not populate them.
	LatestRelease *Date
	LatestCommit  *Date
}

// MirrorRecord is one live page of the mirror database. ID is the opaque
// handle used for patches and archival.
type MirrorRecord struct {
	ID            string
	Title         string
	Owner         string
	URL           string
	StoredRelease *Date
	StoredCommit  *Date
	Archived      bool
}
