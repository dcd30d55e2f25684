package myshiptracking

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

func identifier(name, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: %s must not be empty", ErrInvalidArgument, name)
	}
	return url.QueryEscape(value), nil
}

// GetPorts lists the whole port database.
func (c *Client) GetPorts(ctx context.Context) ([]Port, error) {
	return fetchTable(ctx, c, c.BaseUrl+"/ports?sort=ID", ExtractPort)
}

// SearchPort lists the ports whose name matches query.
func (c *Client) SearchPort(ctx context.Context, query string) ([]Port, error) {
	search, err := identifier("search", strings.ToLower(query))
	if err != nil {
		return nil, err
	}
	return fetchTable(ctx, c, c.BaseUrl+"/ports?sort=ID&search="+search, ExtractPort)
}

// GetInPortVessels lists the vessels currently in a port.
func (c *Client) GetInPortVessels(ctx context.Context, portId string) ([]InPortVessel, error) {
	pid, err := identifier("port id", portId)
	if err != nil {
		return nil, err
	}
	return fetchTable(ctx, c, c.BaseUrl+"/inport?sort=TIME&pid="+pid, ExtractInPortVessel)
}

// GetArrivals lists the expected arrivals of a port.
func (c *Client) GetArrivals(ctx context.Context, portId string) ([]Arrival, error) {
	pid, err := identifier("port id", portId)
	if err != nil {
		return nil, err
	}
	return fetchTable(ctx, c, c.BaseUrl+"/estimate?sort=TIME&pid="+pid, ExtractArrival)
}

// GetPortCalls lists the recent arrivals and departures of a port.
func (c *Client) GetPortCalls(ctx context.Context, portId string) ([]PortCall, error) {
	pid, err := identifier("port id", portId)
	if err != nil {
		return nil, err
	}
	return fetchTable(ctx, c, c.BaseUrl+"/ports-arrivals-departures/?sort=TIME&pid="+pid, ExtractPortCall)
}

// GetVesselLastPorts lists the last port calls of a vessel.
func (c *Client) GetVesselLastPorts(ctx context.Context, mmsi string) ([]PortCall, error) {
	id, err := identifier("mmsi", mmsi)
	if err != nil {
		return nil, err
	}
	return fetchTable(ctx, c, c.BaseUrl+"/ports-arrivals-departures/?sort=TIME&mmsi="+id, ExtractPortCall)
}

// GetVesselEvents lists the event history of a vessel.
func (c *Client) GetVesselEvents(ctx context.Context, mmsi string) ([]VesselEvent, error) {
	id, err := identifier("mmsi", mmsi)
	if err != nil {
		return nil, err
	}
	return fetchTable(ctx, c, c.BaseUrl+"/vessel-events?sort=TIME&mmsi="+id, ExtractVesselEvent)
}
