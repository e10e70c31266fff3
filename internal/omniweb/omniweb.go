// Package omniweb reads the OMNIWeb high-resolution solar wind archive.
//
// Two layouts are handled: the raw monthly .asc files served under
// https://spdf.gsfc.nasa.gov/pub/data/omni/high_res_omni/monthly_1min/ with
// day-of-year timestamps, and the converted .dat layout (calendar timestamps,
// 3-line header, one sample per line) that the rest of the toolchain and the
// downstream simulator consume.
package omniweb

import (
	"fmt"
	"time"
)

// BaseURL is the spdf monthly 1-minute OMNI archive root.
const BaseURL = "https://spdf.gsfc.nasa.gov/pub/data/omni/high_res_omni/monthly_1min/"

// MonthlyFilename returns the archive file name for one month,
// e.g. omni_min201402.asc.
func MonthlyFilename(year int, month time.Month) string {
	return fmt.Sprintf("omni_min%04d%02d.asc", year, int(month))
}

// MonthlyURL returns the full download URL for one month.
func MonthlyURL(year int, month time.Month) string {
	return BaseURL + MonthlyFilename(year, month)
}

// Field positions of the quantities we carry, counted over the whitespace
// fields of a raw high-res line. The first four fields are year, day-of-year,
// hour, minute; the remainder follow the spdf column specification. By and Bz
// are taken in GSM coordinates, the simulator default.
const (
	fieldBx      = 14 // Bx, nT (GSE=GSM)
	fieldByGSM   = 17
	fieldBzGSM   = 18
	fieldVx      = 22 // km/s, GSE
	fieldVy      = 23
	fieldVz      = 24
	fieldDensity = 25 // n/cc
	fieldTemp    = 26 // K

	minRawFields = 27
)
