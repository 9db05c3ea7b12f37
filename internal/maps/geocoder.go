// README: Google Maps wrapper for address autocomplete and geocoding.
package maps

import (
	"context"
	"fmt"

	gmaps "googlemaps.github.io/maps"

	"lani/internal/types"
)

// Prediction is one autocomplete suggestion for a partially typed address.
type Prediction struct {
	PlaceID     string `json:"placeId"`
	Description string `json:"description"`
}

type Geocoder struct {
	client *gmaps.Client
}

func NewGeocoder(apiKey string) (*Geocoder, error) {
	c, err := gmaps.NewClient(gmaps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("maps client: %w", err)
	}
	return &Geocoder{client: c}, nil
}

// Autocomplete suggests addresses for the riders' and customers' operating
// region; results are biased toward Nigeria.
func (g *Geocoder) Autocomplete(ctx context.Context, input string) ([]Prediction, error) {
	resp, err := g.client.PlaceAutocomplete(ctx, &gmaps.PlaceAutocompleteRequest{
		Input:      input,
		Components: map[gmaps.Component][]string{gmaps.ComponentCountry: {"ng"}},
	})
	if err != nil {
		return nil, fmt.Errorf("place autocomplete: %w", err)
	}
	out := make([]Prediction, 0, len(resp.Predictions))
	for _, p := range resp.Predictions {
		out = append(out, Prediction{PlaceID: p.PlaceID, Description: p.Description})
	}
	return out, nil
}

// Resolve turns an address into coordinates. An address Google cannot place
// resolves to the zero point, which downstream pricing treats as unknown.
func (g *Geocoder) Resolve(ctx context.Context, address string) (types.Point, error) {
	results, err := g.client.Geocode(ctx, &gmaps.GeocodingRequest{Address: address})
	if err != nil {
		return types.Point{}, fmt.Errorf("geocode: %w", err)
	}
	if len(results) == 0 {
		return types.Point{}, nil
	}
	loc := results[0].Geometry.Location
	return types.Point{Lat: loc.Lat, Lng: loc.Lng}, nil
}
