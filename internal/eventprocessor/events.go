// Aerographus - Air Quality Sensor Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/aerographus

package eventprocessor

import (
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/aerographus/internal/models"
)

// Sensor event wire format.
//
// Messages arrive as a JSON object with exactly one key, where the KEY is
// the stringified PM2.5 value and the VALUE is a 4-element array:
//
//	{"12.757133": [51.956168, 7.651169, "2019-01-05T00:00:00", "Feinstaub Box"]}
//
// elements: [latitude, longitude, timestamp ISO-8601, box label]
//
// The inverted value-as-key encoding is a compatibility contract with
// historical captured streams and upstream producers; it is normalized to a
// models.Reading at the decode boundary and never leaks past this package.

const sensorEventElements = 4

// ParseSensorEvent decodes one wire message into a Reading.
// Every deviation from the contract returns a *DecodeError; the payload is
// never partially applied.
func ParseSensorEvent(payload []byte) (*models.Reading, error) {
	var envelope map[string][]json.RawMessage
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, newDecodeError("payload is not a JSON object of arrays", err)
	}
	if len(envelope) != 1 {
		return nil, newDecodeError("payload must contain exactly one key, got "+strconv.Itoa(len(envelope)), nil)
	}

	var (
		rawValue string
		fields   []json.RawMessage
	)
	for k, v := range envelope {
		rawValue, fields = k, v
	}

	value, err := strconv.ParseFloat(rawValue, 64)
	if err != nil {
		return nil, newDecodeError("key is not a numeric PM2.5 value", err)
	}
	if len(fields) != sensorEventElements {
		return nil, newDecodeError("value must be a 4-element array, got "+strconv.Itoa(len(fields)), nil)
	}

	var lat, lon float64
	if err := json.Unmarshal(fields[0], &lat); err != nil {
		return nil, newDecodeError("latitude is not a number", err)
	}
	if err := json.Unmarshal(fields[1], &lon); err != nil {
		return nil, newDecodeError("longitude is not a number", err)
	}

	var timestamp, boxLabel string
	if err := json.Unmarshal(fields[2], &timestamp); err != nil {
		return nil, newDecodeError("timestamp is not a string", err)
	}
	if err := json.Unmarshal(fields[3], &boxLabel); err != nil {
		return nil, newDecodeError("box label is not a string", err)
	}
	if timestamp == "" {
		return nil, newDecodeError("timestamp is empty", nil)
	}

	return &models.Reading{
		Key:       models.LocationKey{Latitude: lat, Longitude: lon},
		Timestamp: timestamp,
		BoxLabel:  boxLabel,
		Value:     value,
	}, nil
}

// MarshalSensorEvent encodes a Reading back into the wire format. Used by
// the replay publisher and tests; the float key is rendered with minimal
// digits so a parse/marshal round trip is stable.
func MarshalSensorEvent(r *models.Reading) ([]byte, error) {
	envelope := map[string][]interface{}{
		strconv.FormatFloat(r.Value, 'f', -1, 64): {
			r.Key.Latitude,
			r.Key.Longitude,
			r.Timestamp,
			r.BoxLabel,
		},
	}
	return json.Marshal(envelope)
}
