package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"foodbridge/internal/config"
	"foodbridge/internal/myerrors"
)

// GoogleClient talks to the Google Maps geocoding and directions APIs. It
// implements both Geocoder and Directions.
type GoogleClient struct {
	cfg    *config.Geoconfig
	client *http.Client
}

func NewGoogleClient(cfg *config.Geoconfig) *GoogleClient {
	return &GoogleClient{
		cfg: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

type geocodeResponse struct {
	Status  string `json:"status"`
	Results []struct {
		FormattedAddress string `json:"formatted_address"`
		Geometry         struct {
			Location struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
	} `json:"results"`
}

func (g *GoogleClient) Resolve(ctx context.Context, address string) (Location, error) {
	params := url.Values{}
	params.Set("address", address)
	params.Set("key", g.cfg.ApiKey)

	var res geocodeResponse
	if err := g.getJSON(ctx, g.cfg.GeocodeURL, params, &res); err != nil {
		return Location{}, myerrors.NewExternal("geocoder", err)
	}

	if res.Status != "OK" || len(res.Results) == 0 {
		return Location{}, myerrors.NewExternal("geocoder",
			fmt.Errorf("geocoding %q failed: %s", address, res.Status))
	}

	first := res.Results[0]
	return Location{
		Lat:     first.Geometry.Location.Lat,
		Lng:     first.Geometry.Location.Lng,
		Address: first.FormattedAddress,
	}, nil
}

type directionsResponse struct {
	Status string `json:"status"`
	Routes []struct {
		WaypointOrder []int `json:"waypoint_order"`
		Legs          []struct {
			Distance struct {
				Value float64 `json:"value"` // meters
			} `json:"distance"`
			Duration struct {
				Value float64 `json:"value"` // seconds
			} `json:"duration"`
		} `json:"legs"`
	} `json:"routes"`
}

func (g *GoogleClient) Route(ctx context.Context, origin, destination Location, waypoints []Location) (RoutePlan, error) {
	coords := make([]string, 0, len(waypoints))
	for _, wp := range waypoints {
		coords = append(coords, fmt.Sprintf("%f,%f", wp.Lat, wp.Lng))
	}

	params := url.Values{}
	params.Set("origin", fmt.Sprintf("%f,%f", origin.Lat, origin.Lng))
	params.Set("destination", fmt.Sprintf("%f,%f", destination.Lat, destination.Lng))
	params.Set("waypoints", "optimize:true|"+strings.Join(coords, "|"))
	params.Set("key", g.cfg.ApiKey)

	var res directionsResponse
	if err := g.getJSON(ctx, g.cfg.DirectionsURL, params, &res); err != nil {
		return RoutePlan{}, myerrors.NewExternal("directions", err)
	}

	if res.Status != "OK" || len(res.Routes) == 0 {
		return RoutePlan{}, myerrors.NewExternal("directions",
			fmt.Errorf("directions request failed: %s", res.Status))
	}

	route := res.Routes[0]
	plan := RoutePlan{
		WaypointOrder: route.WaypointOrder,
		Legs:          make([]Leg, 0, len(route.Legs)),
	}
	for _, leg := range route.Legs {
		plan.Legs = append(plan.Legs, Leg{
			DistanceKm:  leg.Distance.Value / 1000,
			DurationMin: leg.Duration.Value / 60,
		})
	}
	return plan, nil
}

func (g *GoogleClient) getJSON(ctx context.Context, baseURL string, params url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
