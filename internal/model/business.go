package model

// Placeholder values substituted for missing data so exported fields are
// never blank.
const (
	NoWebsite = "No website available"
	NoPhone   = "No phone available"
	NoEmail   = "No email available"
)

// DefaultRadius (meters) is used when the radius is absent or not a number.
const DefaultRadius = 5000

// Business represents one discovered business after enrichment.
type Business struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	Website   string  `json:"website"`
	Phone     string  `json:"phone"`
	Email     string  `json:"email"`
	PlaceID   string  `json:"place_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	DistanceM float64 `json:"distance_m"`
	Query     string  `json:"query"`
}

// NewBusiness assembles a record from a search hit and its enrichment
// outputs, substituting placeholders for any empty field.
func NewBusiness(name, address, website, phone, email string) Business {
	return Business{
		Name:    name,
		Address: address,
		Website: orPlaceholder(website, NoWebsite),
		Phone:   orPlaceholder(phone, NoPhone),
		Email:   orPlaceholder(email, NoEmail),
	}
}

func orPlaceholder(v, placeholder string) string {
	if v == "" {
		return placeholder
	}
	return v
}

// SearchParams holds all configuration for one pipeline run.
type SearchParams struct {
	Location string
	Category string
	Radius   int // meters

	HarvestEmails bool

	APIKey string
	DBPath string
}

// Normalize fills defaults for unset fields.
func (p *SearchParams) Normalize() {
	if p.Radius <= 0 {
		p.Radius = DefaultRadius
	}
}

// Query returns the text-search query string sent upstream.
func (p *SearchParams) Query() string {
	return p.Category + " in " + p.Location
}
