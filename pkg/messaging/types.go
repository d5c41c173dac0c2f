package messaging

type ChangeTopic string

const (
	CatalogueChanged ChangeTopic = "catalogue_changed"
	Tracking         ChangeTopic = "tracking"
)

// CatalogueChange tells listeners that the remote data behind a catalogue
// changed and should be fetched again.
type CatalogueChange struct {
	Catalogue string `json:"catalogue"`
	Reason    string `json:"reason,omitempty"`
}
