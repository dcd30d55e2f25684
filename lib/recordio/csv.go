package recordio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"shiptrack/lib/scrapers/myshiptracking"
)

// WriteCSV writes a header taken from the first record's columns followed by
// one line per record, absent fields are written as empty cells. Nothing is
// written for an empty slice.
func WriteCSV[T myshiptracking.Record](w io.Writer, records []T) error {
	if len(records) == 0 {
		return nil
	}

	writer := csv.NewWriter(w)
	err := writer.Write(records[0].Columns())
	if err != nil {
		return err
	}
	line := make([]string, len(records[0].Columns()))
	for _, r := range records {
		values := r.Values()
		for i := range line {
			line[i] = ""
			if i < len(values) {
				line[i] = myshiptracking.Value(values[i])
			}
		}
		err = writer.Write(line)
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// SaveCSV writes records to path, the file is only created when there is
// something to write.
func SaveCSV[T myshiptracking.Record](path string, records []T) error {
	if len(records) == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = WriteCSV(f, records)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// ReadPorts reads a port listing written by WriteCSV, empty cells come back
// as absent fields.
func ReadPorts(r io.Reader) ([]myshiptracking.Port, error) {
	reader := csv.NewReader(r)
	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, required := range []string{"id", "name"} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("port csv has no %q column", required)
		}
	}

	var ports []myshiptracking.Port
	for {
		line, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		field := func(name string) *string {
			i, ok := index[name]
			if !ok || line[i] == "" {
				return nil
			}
			value := line[i]
			return &value
		}
		ports = append(ports, myshiptracking.Port{
			Id:      field("id"),
			Name:    field("name"),
			Country: field("country"),
			Type:    field("type"),
			Size:    field("size"),
			Url:     field("url"),
		})
	}
	return ports, nil
}

func ReadPortsCSV(path string) ([]myshiptracking.Port, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadPorts(f)
}
