package testutil

import (
	"fmt"

	"github.com/roach88/insight/internal/ir"
)

// Section builds a complete sections record. Fields in overrides replace the
// defaults; override values may be plain Go numbers and strings.
//
// Panics on an override value that is not a number or a string. This is a
// fail-fast approach to catch test misconfiguration.
func Section(overrides map[string]any) ir.Record {
	rec := ir.Record{
		"dept":       ir.String("cpsc"),
		"id":         ir.String("310"),
		"instructor": ir.String("smith, jane"),
		"title":      ir.String("intr sftwr eng"),
		"uuid":       ir.String("1000"),
		"year":       ir.Number(2015),
		"avg":        ir.Number(75),
		"pass":       ir.Number(100),
		"fail":       ir.Number(5),
		"audit":      ir.Number(0),
	}
	return apply(rec, overrides)
}

// Room builds a complete rooms record. See Section for overrides.
func Room(overrides map[string]any) ir.Record {
	rec := ir.Record{
		"fullname":  ir.String("Hugh Dempster Pavilion"),
		"shortname": ir.String("DMP"),
		"number":    ir.String("110"),
		"name":      ir.String("DMP_110"),
		"address":   ir.String("6245 Agronomy Road V6T 1Z4"),
		"type":      ir.String("Tiered Large Group"),
		"furniture": ir.String("Classroom-Fixed Tablets"),
		"href":      ir.String("http://example.com/rooms/DMP-110"),
		"lat":       ir.Number(49.26125),
		"lon":       ir.Number(-123.24807),
		"seats":     ir.Number(120),
	}
	return apply(rec, overrides)
}

// Sections builds n sections records with distinct uuid and dept values
// ("d0", "d1", ...). Grouping them by dept yields n groups.
func Sections(n int) []ir.Record {
	records := make([]ir.Record, n)
	for i := range records {
		records[i] = Section(map[string]any{
			"uuid": fmt.Sprintf("%d", i),
			"dept": fmt.Sprintf("d%d", i),
			"avg":  float64(50 + i%50),
		})
	}
	return records
}

// Rooms builds n rooms records with distinct name and seats values.
func Rooms(n int) []ir.Record {
	records := make([]ir.Record, n)
	for i := range records {
		records[i] = Room(map[string]any{
			"name":  fmt.Sprintf("R_%d", i),
			"seats": i,
		})
	}
	return records
}

func apply(rec ir.Record, overrides map[string]any) ir.Record {
	for k, v := range overrides {
		val, err := ir.ValueOf(v)
		if err != nil {
			panic(fmt.Sprintf("testutil: override %q: %v", k, err))
		}
		rec[k] = val
	}
	return rec
}
