package myshiptracking

import (
	"fmt"
	"shiptrack/lib/htmlutil"
	"shiptrack/lib/textutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// placeholder the site prints for unknown vessel dimensions
const missingValue = "---"

// Rule extracts one record from one table row.
type Rule[T Record] func(row Row) (T, error)

// Extract applies the rule registered for kind, an unknown kind is an
// ErrInvalidArgument.
func Extract(row Row, kind Kind) (Record, error) {
	switch kind {
	case KindPort:
		return ExtractPort(row)
	case KindInPortVessel:
		return ExtractInPortVessel(row)
	case KindArrival:
		return ExtractArrival(row)
	case KindPortCall:
		return ExtractPortCall(row)
	case KindVesselEvent:
		return ExtractVesselEvent(row)
	}
	return nil, fmt.Errorf("%w: unknown record kind %s", ErrInvalidArgument, kind)
}

// ExtractPort reads a row of the port database. The link looks like
// /ports/port-of-rotterdam-in-nl-netherlands-id-137, the id is the last
// dash-separated segment and the country the third from last.
func ExtractPort(row Row) (Port, error) {
	const rule = "port_database"

	cell, err := row.Cell(rule, 1)
	if err != nil {
		return Port{}, err
	}
	href, ok := htmlutil.FindAttr(cell, "a", "href")
	if !ok {
		return Port{}, markupErrorf(rule, "cell 1 has no link")
	}
	segments := strings.Split(href, "-")
	if len(segments) < 3 {
		return Port{}, markupErrorf(rule, "unexpected port link %q", href)
	}
	portType, err := row.Text(rule, 2)
	if err != nil {
		return Port{}, err
	}
	size, err := row.Text(rule, 3)
	if err != nil {
		return Port{}, err
	}

	return Port{
		Id:      ptr(segments[len(segments)-1]),
		Name:    ptr(cell.Text()),
		Country: ptr(textutil.Capitalize(segments[len(segments)-3])),
		Type:    ptr(portType),
		Size:    ptr(size),
		Url:     ptr(row.Origin + href),
	}, nil
}

func optionalDimension(row Row, rule string, i int) (*string, error) {
	text, err := row.Text(rule, i)
	if err != nil {
		return nil, err
	}
	if text == missingValue {
		return nil, nil
	}
	return ptr(text), nil
}

func ExtractInPortVessel(row Row) (InPortVessel, error) {
	const rule = "inport"

	var vessel InPortVessel
	var err error

	vessel.VesselName, vessel.Alpha2Code, err = row.VesselLabel(rule, 0)
	if err != nil {
		return InPortVessel{}, err
	}
	arrived, err := row.Text(rule, 1)
	if err != nil {
		return InPortVessel{}, err
	}
	vessel.Arrived = ptr(arrived)

	vessel.Dwt, err = optionalDimension(row, rule, 2)
	if err != nil {
		return InPortVessel{}, err
	}
	vessel.Grt, err = optionalDimension(row, rule, 3)
	if err != nil {
		return InPortVessel{}, err
	}
	vessel.Built, err = optionalDimension(row, rule, 4)
	if err != nil {
		return InPortVessel{}, err
	}

	size, err := row.Text(rule, 5)
	if err != nil {
		return InPortVessel{}, err
	}
	vessel.Size = ptr(size)

	link, err := row.Link(rule, 0)
	if err != nil {
		return InPortVessel{}, err
	}
	vessel.Url = ptr(link)

	return vessel, nil
}

func ExtractArrival(row Row) (Arrival, error) {
	const rule = "arrivals"

	var arrival Arrival

	mmsi, err := row.Text(rule, 0)
	if err != nil {
		return Arrival{}, err
	}
	arrival.Mmsi = ptr(mmsi)

	arrival.VesselName, arrival.Alpha2Code, err = row.VesselLabel(rule, 1)
	if err != nil {
		return Arrival{}, err
	}

	port, err := row.Text(rule, 2)
	if err != nil {
		return Arrival{}, err
	}
	arrival.Port = ptr(textutil.Capitalize(strings.TrimSpace(port)))

	eta, err := row.Text(rule, 3)
	if err != nil {
		return Arrival{}, err
	}
	arrival.Eta = ptr(eta)

	link, err := row.Link(rule, 2)
	if err != nil {
		return Arrival{}, err
	}
	arrival.Url = ptr(link)

	return arrival, nil
}

func ExtractPortCall(row Row) (PortCall, error) {
	const rule = "port_calls"

	var call PortCall

	event, err := row.Text(rule, 1)
	if err != nil {
		return PortCall{}, err
	}
	call.Event = ptr(event)

	time, err := row.Text(rule, 2)
	if err != nil {
		return PortCall{}, err
	}
	call.Time = ptr(time)

	port, err := row.Text(rule, 3)
	if err != nil {
		return PortCall{}, err
	}
	call.Port = ptr(strings.TrimSpace(port))

	call.VesselName, call.Alpha2Code, err = row.VesselLabel(rule, 4)
	if err != nil {
		return PortCall{}, err
	}

	link, err := row.Link(rule, 4)
	if err != nil {
		return PortCall{}, err
	}
	call.Url = ptr(link)

	return call, nil
}

func eventDetail(cell *goquery.Selection) *string {
	text := strings.TrimSpace(cell.Text())
	if text == "" {
		return nil
	}

	spans := cell.Find("span")
	if spans.Length() == 0 {
		return ptr(text)
	}
	parts := make([]string, spans.Length())
	spans.Each(func(i int, span *goquery.Selection) {
		parts[i] = strings.TrimSpace(span.Text())
	})
	return ptr(strings.Join(parts, ". "))
}

// ExtractVesselEvent reads a row of a vessel's event history. The fourth
// cell holds up to two div.area_txt_1lines blocks ("lat / lon" and a
// position label) and a div.small destination block prefixed with its
// country code.
func ExtractVesselEvent(row Row) (VesselEvent, error) {
	const rule = "event"

	var event VesselEvent

	time, err := row.Text(rule, 0)
	if err != nil {
		return VesselEvent{}, err
	}
	event.Time = ptr(time)

	name, err := row.Text(rule, 1)
	if err != nil {
		return VesselEvent{}, err
	}
	event.Event = ptr(strings.TrimSpace(name))

	detailCell, err := row.Cell(rule, 2)
	if err != nil {
		return VesselEvent{}, err
	}
	event.Detail = eventDetail(detailCell)

	positionCell, err := row.Cell(rule, 3)
	if err != nil {
		return VesselEvent{}, err
	}

	blocks := positionCell.Find("div.area_txt_1lines")
	if blocks.Length() > 0 {
		latLon := strings.TrimSpace(blocks.Eq(0).Text())
		if latLon != "" {
			// anything after a second "/" is not part of the coordinates
			coords := strings.Split(latLon, "/")
			if len(coords) < 2 {
				return VesselEvent{}, markupErrorf(rule, "position %q is not a lat/lon pair", latLon)
			}
			event.Latitude = ptr(strings.TrimSpace(coords[0]))
			event.Longitude = ptr(strings.TrimSpace(coords[1]))
		}
	}
	if blocks.Length() > 1 {
		position := strings.TrimSpace(blocks.Eq(1).Text())
		if position != "" {
			event.Position = ptr(position)
		}
	}

	destination, ok := htmlutil.FindText(positionCell, "div.small")
	if !ok {
		return VesselEvent{}, markupErrorf(rule, "cell 3 has no destination block")
	}
	destination = strings.TrimSpace(destination)
	if destination != "" {
		port, alpha2code, ok := textutil.SplitLeadingCode(destination)
		event.Destination = ptr(port)
		if ok {
			event.DestinationAlpha2Code = ptr(alpha2code)
		}
	}

	return event, nil
}
