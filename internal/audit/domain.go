// Package audit renders the read-only audit trail of sensitive-data access
// events for one entity. Records are created exclusively by the platform;
// the panel only pages through them.
package audit

// Badge is the color-coded label for one audit action type.
type Badge struct {
	Label string
	Color string
}

// badgeVocabulary maps the fixed platform action types to their badges.
var badgeVocabulary = map[string]Badge{
	"REVEAL": {Label: "Revelação", Color: "purple"},
	"VIEW":   {Label: "Visualização", Color: "blue"},
	"EDIT":   {Label: "Edição", Color: "amber"},
	"CREATE": {Label: "Criação", Color: "green"},
	"DELETE": {Label: "Exclusão", Color: "red"},
}

// BadgeFor resolves the badge for an action type. Unknown actions get a
// neutral badge with the raw action as label.
func BadgeFor(action string) Badge {
	if b, ok := badgeVocabulary[action]; ok {
		return b
	}
	return Badge{Label: action, Color: "gray"}
}

// Row is one audit record prepared for rendering.
type Row struct {
	ID        string
	UserEmail string
	Action    Badge
	Timestamp string
	IPAddress string
	Fields    []string
}

// Paging carries backend-driven pagination state. Page and size changes must
// re-fetch; the panel never re-slices a fetched page.
type Paging struct {
	Page       int
	PageSize   int
	Total      int
	TotalPages int
	HasPrev    bool
	HasNext    bool
}

// View is one rendered audit page.
type View struct {
	Rows   []Row
	Paging Paging
	Empty  bool
}
