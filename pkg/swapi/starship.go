package swapi

// Starship mirrors the SWAPI starship resource. Numeric attributes are kept as the
// raw strings the API returns ("unknown", "30-165", "1,600").
type Starship struct {
	Name                 string   `json:"name"`
	Model                string   `json:"model,omitempty"`
	Manufacturer         string   `json:"manufacturer,omitempty"`
	CostInCredits        string   `json:"cost_in_credits"`
	Length               string   `json:"length,omitempty"`
	MaxAtmospheringSpeed string   `json:"max_atmosphering_speed,omitempty"`
	Crew                 string   `json:"crew,omitempty"`
	Passengers           string   `json:"passengers,omitempty"`
	CargoCapacity        string   `json:"cargo_capacity,omitempty"`
	Consumables          string   `json:"consumables,omitempty"`
	HyperdriveRating     string   `json:"hyperdrive_rating,omitempty"`
	MGLT                 string   `json:"MGLT,omitempty"`
	StarshipClass        string   `json:"starship_class,omitempty"`
	Pilots               []string `json:"pilots,omitempty"`
	Films                []string `json:"films,omitempty"`
	Created              string   `json:"created,omitempty"`
	Edited               string   `json:"edited,omitempty"`
	URL                  string   `json:"url,omitempty"`
}

// Page is one page of a SWAPI collection response.
type Page struct {
	Count    int        `json:"count"`
	Next     *string    `json:"next"`
	Previous *string    `json:"previous"`
	Results  []Starship `json:"results"`
}
