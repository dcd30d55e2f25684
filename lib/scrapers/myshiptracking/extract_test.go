package myshiptracking

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestExtractPort(t *testing.T) {
	row := parseRow(t, `<tr>
		<td>137</td><td><a href="/ports/port-of-rotterdam-in-nl-NETHERLANDS-id-137">ROTTERDAM</a></td><td>Port</td><td>XLarge</td>
	</tr>`)

	port, err := ExtractPort(row)
	require.NoError(t, err)

	expected := Port{
		Id:      ptr("137"),
		Name:    ptr("ROTTERDAM"),
		Country: ptr("Netherlands"),
		Type:    ptr("Port"),
		Size:    ptr("XLarge"),
		Url:     ptr(testOrigin + "/ports/port-of-rotterdam-in-nl-NETHERLANDS-id-137"),
	}
	if diff := cmp.Diff(expected, port); diff != "" {
		t.Fatal(diff)
	}
}

func TestExtractInPortVessel(t *testing.T) {
	testCases := []struct {
		name     string
		row      string
		expected InPortVessel
	}{
		{
			name: "all cells present",
			row: `<tr><td><a href="/vessels/maersk-line-mmsi-244123000-imo-0"><span>MAERSK LINE [NL]</span></a></td>` +
				`<td>2024-05-01 10:00</td><td>12000</td><td>9000</td><td>2004</td><td>200 / 32 m</td></tr>`,
			expected: InPortVessel{
				VesselName: ptr("MAERSK LINE"),
				Alpha2Code: ptr("NL"),
				Arrived:    ptr("2024-05-01 10:00"),
				Dwt:        ptr("12000"),
				Grt:        ptr("9000"),
				Built:      ptr("2004"),
				Size:       ptr("200 / 32 m"),
				Url:        ptr(testOrigin + "/vessels/maersk-line-mmsi-244123000-imo-0"),
			},
		},
		{
			name: "placeholders and no country code",
			row: `<tr><td><a href="/vessels/tug-4"><span>TUG 4</span></a></td>` +
				`<td>2024-05-01 11:30</td><td>---</td><td>---</td><td>---</td><td>---</td></tr>`,
			expected: InPortVessel{
				VesselName: ptr("TUG 4"),
				Arrived:    ptr("2024-05-01 11:30"),
				// only the vessel dimensions treat the placeholder as missing
				Size: ptr("---"),
				Url:  ptr(testOrigin + "/vessels/tug-4"),
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			vessel, err := ExtractInPortVessel(parseRow(t, test.row))
			require.NoError(t, err)
			if diff := cmp.Diff(test.expected, vessel); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestExtractArrival(t *testing.T) {
	row := parseRow(t, `<tr><td>244123000</td>`+
		`<td><a href="/vessels/ever-given"><span>EVER GIVEN [PA]</span></a></td>`+
		`<td><a href="/ports/port-of-rotterdam-in-nl-netherlands-id-137"> ROTTERDAM </a></td>`+
		`<td>2024-05-02 08:00</td></tr>`)

	arrival, err := ExtractArrival(row)
	require.NoError(t, err)

	expected := Arrival{
		Mmsi:       ptr("244123000"),
		VesselName: ptr("EVER GIVEN"),
		Alpha2Code: ptr("PA"),
		Port:       ptr("Rotterdam"),
		Eta:        ptr("2024-05-02 08:00"),
		Url:        ptr(testOrigin + "/ports/port-of-rotterdam-in-nl-netherlands-id-137"),
	}
	if diff := cmp.Diff(expected, arrival); diff != "" {
		t.Fatal(diff)
	}
}

func TestExtractPortCall(t *testing.T) {
	row := parseRow(t, `<tr><td><img src="/icons/arrival.png"></td><td>Arrival</td><td>2024-05-01 10:00</td>`+
		`<td> Rotterdam </td><td><a href="/vessels/stena-britannica"><span>STENA BRITANNICA [GB]</span></a></td></tr>`)

	call, err := ExtractPortCall(row)
	require.NoError(t, err)

	expected := PortCall{
		Event:      ptr("Arrival"),
		Time:       ptr("2024-05-01 10:00"),
		Port:       ptr("Rotterdam"),
		VesselName: ptr("STENA BRITANNICA"),
		Alpha2Code: ptr("GB"),
		Url:        ptr(testOrigin + "/vessels/stena-britannica"),
	}
	if diff := cmp.Diff(expected, call); diff != "" {
		t.Fatal(diff)
	}
}

func TestExtractVesselEvent(t *testing.T) {
	testCases := []struct {
		name     string
		row      string
		expected VesselEvent
	}{
		{
			name: "all blocks present",
			row: `<tr><td>2024-05-01 10:00</td><td> Port Arrival </td>` +
				`<td><span> Rotterdam </span><span> Berth 5 </span></td>` +
				`<td><div class="area_txt_1lines"> 51.95 / 4.05 </div><div class="area_txt_1lines"> North Sea </div>` +
				`<div class="small"> [NL] ROTTERDAM </div></td></tr>`,
			expected: VesselEvent{
				Time:                  ptr("2024-05-01 10:00"),
				Event:                 ptr("Port Arrival"),
				Detail:                ptr("Rotterdam. Berth 5"),
				Latitude:              ptr("51.95"),
				Longitude:             ptr("4.05"),
				Position:              ptr("North Sea"),
				Destination:           ptr("ROTTERDAM"),
				DestinationAlpha2Code: ptr("NL"),
			},
		},
		{
			name: "plain detail and destination without code",
			row: `<tr><td>2024-05-03 18:20</td><td>Speed change</td><td> 12.4 kn </td>` +
				`<td><div class="area_txt_1lines">1.25 / 103.8</div><div class="small">SINGAPORE STRAIT</div></td></tr>`,
			expected: VesselEvent{
				Time:        ptr("2024-05-03 18:20"),
				Event:       ptr("Speed change"),
				Detail:      ptr("12.4 kn"),
				Latitude:    ptr("1.25"),
				Longitude:   ptr("103.8"),
				Destination: ptr("SINGAPORE STRAIT"),
			},
		},
		{
			name: "extra slash after the coordinates",
			row: `<tr><td>2024-05-03 19:00</td><td>Position</td><td></td>` +
				`<td><div class="area_txt_1lines">53.3 / 6.9 / AIS</div><div class="small">[NL] DELFZIJL</div></td></tr>`,
			expected: VesselEvent{
				Time:                  ptr("2024-05-03 19:00"),
				Event:                 ptr("Position"),
				Latitude:              ptr("53.3"),
				Longitude:             ptr("6.9"),
				Destination:           ptr("DELFZIJL"),
				DestinationAlpha2Code: ptr("NL"),
			},
		},
		{
			name: "blank blocks",
			row: `<tr><td>2024-05-04 00:00</td><td>Signal lost</td><td>  </td>` +
				`<td><div class="area_txt_1lines"> </div><div class="area_txt_1lines"></div><div class="small"> </div></td></tr>`,
			expected: VesselEvent{
				Time:  ptr("2024-05-04 00:00"),
				Event: ptr("Signal lost"),
			},
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			event, err := ExtractVesselEvent(parseRow(t, test.row))
			require.NoError(t, err)
			if diff := cmp.Diff(test.expected, event); diff != "" {
				t.Fatal(diff)
			}
		})
	}
}

func TestExtractMarkupMismatch(t *testing.T) {
	testCases := []struct {
		name string
		kind Kind
		row  string
	}{
		{name: "port without link", kind: KindPort, row: `<tr><td>1</td><td>ROTTERDAM</td><td>Port</td><td>Large</td></tr>`},
		{name: "port with short link", kind: KindPort, row: `<tr><td>1</td><td><a href="/ports/x">X</a></td><td>Port</td><td>Large</td></tr>`},
		{name: "inport missing cells", kind: KindInPortVessel, row: `<tr><td><a href="/v"><span>A [NL]</span></a></td><td>now</td></tr>`},
		{name: "inport without label", kind: KindInPortVessel, row: `<tr><td><a href="/v">A</a></td><td>1</td><td>2</td><td>3</td><td>4</td><td>5</td></tr>`},
		{name: "arrival without port link", kind: KindArrival, row: `<tr><td>1</td><td><span>A</span></td><td>X</td><td>now</td></tr>`},
		{name: "port call too short", kind: KindPortCall, row: `<tr><td></td><td>Arrival</td></tr>`},
		{name: "event without destination", kind: KindVesselEvent, row: `<tr><td>t</td><td>e</td><td>d</td><td><div class="area_txt_1lines">1 / 2</div></td></tr>`},
		{name: "event with bad position", kind: KindVesselEvent, row: `<tr><td>t</td><td>e</td><td>d</td><td><div class="area_txt_1lines">somewhere</div><div class="small"></div></td></tr>`},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			_, err := Extract(parseRow(t, test.row), test.kind)
			require.ErrorIs(t, err, ErrMarkupMismatch)

			var markupErr *MarkupError
			require.ErrorAs(t, err, &markupErr)
			require.Equal(t, test.kind.String(), markupErr.Rule)
		})
	}
}

func TestExtractInvalidKind(t *testing.T) {
	_, err := Extract(parseRow(t, `<tr><td>1</td></tr>`), Kind(42))
	require.ErrorIs(t, err, ErrInvalidArgument)
	require.NotErrorIs(t, err, ErrMarkupMismatch)
}

func TestExtractFullRowsHaveEveryField(t *testing.T) {
	rows := map[Kind]string{
		KindPort: `<tr><td>1</td><td><a href="/ports/a-port-in-b-c-id-1">A</a></td><td>Port</td><td>Small</td></tr>`,
		KindInPortVessel: `<tr><td><a href="/v"><span>A [NL]</span></a></td>` +
			`<td>now</td><td>1</td><td>2</td><td>3</td><td>4</td></tr>`,
		KindArrival:  `<tr><td>1</td><td><span>A [NL]</span></td><td><a href="/p">P</a></td><td>eta</td></tr>`,
		KindPortCall: `<tr><td></td><td>Arrival</td><td>now</td><td>P</td><td><a href="/v"><span>A [NL]</span></a></td></tr>`,
		KindVesselEvent: `<tr><td>now</td><td>e</td><td>d</td><td><div class="area_txt_1lines">1 / 2</div>` +
			`<div class="area_txt_1lines">pos</div><div class="small">[NL] P</div></td></tr>`,
	}

	for kind, tr := range rows {
		record, err := Extract(parseRow(t, tr), kind)
		require.NoError(t, err, kind.String())
		require.Equal(t, kind, record.Kind())
		require.Len(t, record.Values(), len(record.Columns()))
		for i, value := range record.Values() {
			require.NotNil(t, value, "%s.%s", kind, record.Columns()[i])
		}
	}
}

func TestParseKind(t *testing.T) {
	for _, kind := range []Kind{KindPort, KindInPortVessel, KindArrival, KindPortCall, KindVesselEvent} {
		parsed, err := ParseKind(kind.String())
		require.NoError(t, err)
		require.Equal(t, kind, parsed)
	}
	_, err := ParseKind("harbours")
	require.ErrorIs(t, err, ErrInvalidArgument)
}
