package types

import (
	"encoding/binary"
	"encoding/hex"
	"math"
	"testing"
)

func TestGeographyPointScanEWKT(t *testing.T) {
	var point GeographyPoint
	if err := point.Scan("SRID=4326;POINT(121.0437 14.6760)"); err != nil {
		t.Fatalf("scan ewkt: %v", err)
	}
	if math.Abs(point.Lng-121.0437) > 1e-9 || math.Abs(point.Lat-14.6760) > 1e-9 {
		t.Fatalf("unexpected coordinates: %+v", point)
	}
}

func TestGeographyPointScanHexEWKB(t *testing.T) {
	raw := make([]byte, 25)
	raw[0] = 1 // little endian
	binary.LittleEndian.PutUint32(raw[1:5], 1|0x20000000)
	binary.LittleEndian.PutUint32(raw[5:9], 4326)
	binary.LittleEndian.PutUint64(raw[9:17], math.Float64bits(120.9842))
	binary.LittleEndian.PutUint64(raw[17:25], math.Float64bits(14.5995))

	var point GeographyPoint
	if err := point.Scan(hex.EncodeToString(raw)); err != nil {
		t.Fatalf("scan hex ewkb: %v", err)
	}
	if math.Abs(point.Lng-120.9842) > 1e-9 || math.Abs(point.Lat-14.5995) > 1e-9 {
		t.Fatalf("unexpected coordinates: %+v", point)
	}
}

func TestGeographyPointValueRoundTrip(t *testing.T) {
	point := GeographyPoint{Lat: 14.5995, Lng: 120.9842}
	value, err := point.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned GeographyPoint
	if err := scanned.Scan(value.(string)); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if math.Abs(scanned.Lat-point.Lat) > 1e-4 || math.Abs(scanned.Lng-point.Lng) > 1e-4 {
		t.Fatalf("round trip drifted: %+v", scanned)
	}
}

func TestGeographyPointScanNilResets(t *testing.T) {
	point := GeographyPoint{Lat: 1, Lng: 2}
	if err := point.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if point.Lat != 0 || point.Lng != 0 {
		t.Fatalf("expected zero point, got %+v", point)
	}
}
