package myshiptracking

import (
	"fmt"
	"strings"
)

// Kind tags the closed set of table layouts the site serves.
type Kind int

const (
	KindPort Kind = iota + 1
	KindInPortVessel
	KindArrival
	KindPortCall
	KindVesselEvent
)

var kindNames = map[Kind]string{
	KindPort:         "port_database",
	KindInPortVessel: "inport",
	KindArrival:      "arrivals",
	KindPortCall:     "port_calls",
	KindVesselEvent:  "event",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if !ok {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return name
}

func (k Kind) Valid() bool {
	_, ok := kindNames[k]
	return ok
}

// ParseKind accepts the tag names returned by Kind.String.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range kindNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown record kind %q", ErrInvalidArgument, name)
}

// Record is implemented by the five record structs. Columns and Values are
// parallel slices, nil values are absent fields.
type Record interface {
	Kind() Kind
	Columns() []string
	Values() []*string
}

func ptr(s string) *string {
	return &s
}

// Value dereferences an optional field, absent fields read as "".
func Value(field *string) string {
	if field == nil {
		return ""
	}
	return *field
}

type Port struct {
	Id      *string `json:"id"`
	Name    *string `json:"name"`
	Country *string `json:"country"`
	Type    *string `json:"type"`
	Size    *string `json:"size"`
	Url     *string `json:"url"`
}

var portColumns = []string{"id", "name", "country", "type", "size", "url"}

func (Port) Kind() Kind { return KindPort }
func (Port) Columns() []string { return portColumns }
func (p Port) Values() []*string { return []*string{p.Id, p.Name, p.Country, p.Type, p.Size, p.Url} }

type InPortVessel struct {
	VesselName *string `json:"vessel_name"`
	Alpha2Code *string `json:"alpha2code"`
	Arrived    *string `json:"arrived"`
	Dwt        *string `json:"dwt"`
	Grt        *string `json:"grt"`
	Built      *string `json:"built"`
	Size       *string `json:"size"`
	Url        *string `json:"url"`
}

var inPortVesselColumns = []string{"vessel_name", "alpha2code", "arrived", "dwt", "grt", "built", "size", "url"}

func (InPortVessel) Kind() Kind { return KindInPortVessel }
func (InPortVessel) Columns() []string { return inPortVesselColumns }
func (v InPortVessel) Values() []*string {
	return []*string{v.VesselName, v.Alpha2Code, v.Arrived, v.Dwt, v.Grt, v.Built, v.Size, v.Url}
}

type Arrival struct {
	Mmsi       *string `json:"mmsi"`
	VesselName *string `json:"vessel_name"`
	Alpha2Code *string `json:"alpha2code"`
	Port       *string `json:"port"`
	Eta        *string `json:"eta"`
	Url        *string `json:"url"`
}

var arrivalColumns = []string{"mmsi", "vessel_name", "alpha2code", "port", "eta", "url"}

func (Arrival) Kind() Kind { return KindArrival }
func (Arrival) Columns() []string { return arrivalColumns }
func (a Arrival) Values() []*string {
	return []*string{a.Mmsi, a.VesselName, a.Alpha2Code, a.Port, a.Eta, a.Url}
}

type PortCall struct {
	Event      *string `json:"event"`
	Time       *string `json:"time"`
	Port       *string `json:"port"`
	VesselName *string `json:"vessel_name"`
	Alpha2Code *string `json:"alpha2code"`
	Url        *string `json:"url"`
}

var portCallColumns = []string{"event", "time", "port", "vessel_name", "alpha2code", "url"}

func (PortCall) Kind() Kind { return KindPortCall }
func (PortCall) Columns() []string { return portCallColumns }
func (c PortCall) Values() []*string {
	return []*string{c.Event, c.Time, c.Port, c.VesselName, c.Alpha2Code, c.Url}
}

type VesselEvent struct {
	Time                  *string `json:"time"`
	Event                 *string `json:"event"`
	Detail                *string `json:"detail"`
	Latitude              *string `json:"latitude"`
	Longitude             *string `json:"longitude"`
	Position              *string `json:"position"`
	Destination           *string `json:"destination"`
	DestinationAlpha2Code *string `json:"destination_alpha2code"`
}

var vesselEventColumns = []string{
	"time", "event", "detail", "latitude", "longitude",
	"position", "destination", "destination_alpha2code",
}

func (VesselEvent) Kind() Kind { return KindVesselEvent }
func (VesselEvent) Columns() []string { return vesselEventColumns }
func (e VesselEvent) Values() []*string {
	return []*string{
		e.Time, e.Event, e.Detail, e.Latitude, e.Longitude,
		e.Position, e.Destination, e.DestinationAlpha2Code,
	}
}
