package tracking

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"shiptrack/lib/recordio"
	"shiptrack/lib/scrapers/myshiptracking"
	"shiptrack/lib/trackstore"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Source is the part of the myshiptracking client a Tracker reads from.
type Source interface {
	GetInPortVessels(ctx context.Context, portId string) ([]myshiptracking.InPortVessel, error)
	GetArrivals(ctx context.Context, portId string) ([]myshiptracking.Arrival, error)
	GetPortCalls(ctx context.Context, portId string) ([]myshiptracking.PortCall, error)
	GetVesselLastPorts(ctx context.Context, mmsi string) ([]myshiptracking.PortCall, error)
	GetVesselEvents(ctx context.Context, mmsi string) ([]myshiptracking.VesselEvent, error)
}

type Recorder interface {
	Push(ctx context.Context, req trackstore.PushRequest) (int64, error)
}

type Options struct {
	// root of the per run folders
	DataDir string
	// log and skip a failed port or vessel instead of aborting
	SkipFailed bool
	// optional, every fetched listing is also pushed here
	Store Recorder
	// defaults to time.Now
	Now func() time.Time
}

type Tracker struct {
	source     Source
	store      Recorder
	dataDir    string
	skipFailed bool
	now        func() time.Time
}

func NewTracker(source Source, opts Options) Tracker {
	if opts.DataDir == "" {
		opts.DataDir = "data"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return Tracker{
		source:     source,
		store:      opts.Store,
		dataDir:    opts.DataDir,
		skipFailed: opts.SkipFailed,
		now:        opts.Now,
	}
}

// Session is one tracking run, every port tracked in it is written below
// Folder and its files carry the session's unix timestamp.
type Session struct {
	Folder string
	Time   time.Time
}

const sessionFolderLayout = "2006-01-02 15h04m"

func (t Tracker) NewSession() (Session, error) {
	now := t.now()
	folder := filepath.Join(t.dataDir, now.Format(sessionFolderLayout))
	err := os.MkdirAll(folder, 0755)
	if err != nil {
		return Session{}, err
	}
	return Session{Folder: folder, Time: now}, nil
}

func (s Session) stamp() string {
	return fmt.Sprint(s.Time.Unix())
}

func portFolderName(port myshiptracking.Port) string {
	name := strings.TrimSpace(myshiptracking.Value(port.Name))
	if name == "" {
		name = "port-" + myshiptracking.Value(port.Id)
	}
	return strings.NewReplacer("/", "_", string(os.PathSeparator), "_").Replace(name)
}

type Report struct {
	Port          myshiptracking.Port
	Folder        string
	InPortVessels int
	Arrivals      int
	PortCalls     int
	// vessels whose history was read, skipped ones excluded
	Vessels int
}

func save[T myshiptracking.Record](ctx context.Context, t Tracker, session Session, path string, kind myshiptracking.Kind, query string, records []T) error {
	err := recordio.SaveCSV(path, records)
	if err != nil {
		return err
	}
	if t.store == nil {
		return nil
	}
	_, err = t.store.Push(ctx, trackstore.PushRequest{
		Kind:    kind,
		Query:   query,
		Time:    session.Time,
		Records: myshiptracking.AsRecords(records),
	})
	return err
}

// TrackPort reads the vessels in port, its expected arrivals and its recent
// port calls, then the last ports and events of every arriving vessel.
func (t Tracker) TrackPort(ctx context.Context, port myshiptracking.Port) (Report, error) {
	session, err := t.NewSession()
	if err != nil {
		return Report{}, err
	}
	return t.trackPort(ctx, session, port)
}

func (t Tracker) trackPort(ctx context.Context, session Session, port myshiptracking.Port) (Report, error) {
	portId := myshiptracking.Value(port.Id)
	ctx, span := tracer.Start(ctx, "TrackPort", trace.WithAttributes(
		attribute.String("port_id", portId),
		attribute.String("port_name", myshiptracking.Value(port.Name)),
	))
	defer span.End()

	report, err := t.readPort(ctx, session, port)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to track port")
		return report, err
	}
	return report, nil
}

func (t Tracker) readPort(ctx context.Context, session Session, port myshiptracking.Port) (Report, error) {
	portId := myshiptracking.Value(port.Id)
	if strings.TrimSpace(portId) == "" {
		return Report{}, fmt.Errorf("%w: port has no id", myshiptracking.ErrInvalidArgument)
	}

	folder := filepath.Join(session.Folder, portFolderName(port))
	err := os.MkdirAll(folder, 0755)
	if err != nil {
		return Report{}, err
	}
	report := Report{Port: port, Folder: folder}
	prefix := fmt.Sprintf("port_%s_%s", portId, session.stamp())

	slog.InfoContext(ctx, "reading vessels in port", "port", portId)
	inPort, err := t.source.GetInPortVessels(ctx, portId)
	if err != nil {
		return report, fmt.Errorf("vessels in port %s: %w", portId, err)
	}
	err = save(ctx, t, session, filepath.Join(folder, prefix+"_inport.csv"), myshiptracking.KindInPortVessel, portId, inPort)
	if err != nil {
		return report, err
	}
	report.InPortVessels = len(inPort)

	slog.InfoContext(ctx, "reading expected arrivals", "port", portId)
	arrivals, err := t.source.GetArrivals(ctx, portId)
	if err != nil {
		return report, fmt.Errorf("arrivals of port %s: %w", portId, err)
	}
	err = save(ctx, t, session, filepath.Join(folder, prefix+"_arrivals.csv"), myshiptracking.KindArrival, portId, arrivals)
	if err != nil {
		return report, err
	}
	report.Arrivals = len(arrivals)

	slog.InfoContext(ctx, "reading port calls", "port", portId)
	calls, err := t.source.GetPortCalls(ctx, portId)
	if err != nil {
		return report, fmt.Errorf("port calls of port %s: %w", portId, err)
	}
	err = save(ctx, t, session, filepath.Join(folder, prefix+"_calls.csv"), myshiptracking.KindPortCall, portId, calls)
	if err != nil {
		return report, err
	}
	report.PortCalls = len(calls)

	slog.InfoContext(ctx, "reading arriving vessels", "port", portId, "vessels", len(arrivals))
	for i, arrival := range arrivals {
		mmsi := strings.TrimSpace(myshiptracking.Value(arrival.Mmsi))
		slog.InfoContext(ctx, "vessel", "mmsi", mmsi, "index", i+1, "of", len(arrivals))

		err := t.readVessel(ctx, session, folder, mmsi)
		if err != nil {
			if !t.skipFailed || ctx.Err() != nil {
				return report, err
			}
			slog.WarnContext(ctx, "skipping vessel", "port", portId, "mmsi", mmsi, "err", err)
			skippedUnits.Add(ctx, 1, metric.WithAttributes(attribute.String("unit", "vessel")))
			continue
		}
		report.Vessels++
	}

	return report, nil
}

func (t Tracker) readVessel(ctx context.Context, session Session, folder, mmsi string) error {
	if mmsi == "" {
		return fmt.Errorf("%w: arrival has no mmsi", myshiptracking.ErrInvalidArgument)
	}
	prefix := fmt.Sprintf("vessel_%s_%s", mmsi, session.stamp())

	ports, err := t.source.GetVesselLastPorts(ctx, mmsi)
	if err != nil {
		return fmt.Errorf("last ports of vessel %s: %w", mmsi, err)
	}
	err = save(ctx, t, session, filepath.Join(folder, prefix+"_ports.csv"), myshiptracking.KindPortCall, mmsi, ports)
	if err != nil {
		return err
	}

	events, err := t.source.GetVesselEvents(ctx, mmsi)
	if err != nil {
		return fmt.Errorf("events of vessel %s: %w", mmsi, err)
	}
	return save(ctx, t, session, filepath.Join(folder, prefix+"_events.csv"), myshiptracking.KindVesselEvent, mmsi, events)
}

// TrackPorts tracks each port in order within a single session. A failed
// port aborts the run unless failures are skipped, the reports of the ports
// tracked so far are returned either way.
func (t Tracker) TrackPorts(ctx context.Context, ports []myshiptracking.Port) ([]Report, error) {
	ctx, span := tracer.Start(ctx, "TrackPorts", trace.WithAttributes(
		attribute.Int("ports", len(ports)),
	))
	defer span.End()

	if len(ports) == 0 {
		return nil, nil
	}
	session, err := t.NewSession()
	if err != nil {
		return nil, err
	}

	var reports []Report
	for i, port := range ports {
		slog.InfoContext(
			ctx, "port",
			"name", myshiptracking.Value(port.Name),
			"index", i+1,
			"of", len(ports),
		)
		report, err := t.trackPort(ctx, session, port)
		if err != nil {
			if !t.skipFailed || ctx.Err() != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "failed to track ports")
				return reports, err
			}
			slog.WarnContext(ctx, "skipping port", "id", myshiptracking.Value(port.Id), "err", err)
			skippedUnits.Add(ctx, 1, metric.WithAttributes(attribute.String("unit", "port")))
			continue
		}
		reports = append(reports, report)
	}
	return reports, nil
}
