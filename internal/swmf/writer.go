// Package swmf writes simulator-facing boundary-condition files for the
// Space Weather Modeling Framework: the IMF.dat solar wind input read by
// BATS-R-US and the RB.SWIMF companion read by the radiation belt model.
package swmf

import (
	"bufio"
	"fmt"
	"io"
	"math"

	"github.com/heliolab/solarwind-apps/internal/series"
)

// fieldWidth is the minimum character width of a data field in IMF.dat.
// Values are rounded to 2 decimals and right-justified; wider values are
// written in full rather than truncated.
const fieldWidth = 7

// Header controls the IMF.dat file header.
type Header struct {
	// Source is the provenance line written first, e.g. the archive URL the
	// data came from.
	Source string

	// GSE selects the GSE coordinate system instead of the GSM default,
	// adding a #COOR block to the header.
	GSE bool
}

// WriteIMF writes a cleaned table as an IMF.dat stream: provenance line,
// column-name line, #START marker, then one line per sample with
// year month day hour minute second millisecond followed by the 8 data
// columns. Every cell must be finite; a NaN or Inf cell aborts the write,
// since the cleaning pipeline guarantees none remain.
func WriteIMF(w io.Writer, t *series.Table, h Header) error {
	if err := t.Validate(); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	source := h.Source
	if source == "" {
		source = "Solar wind boundary conditions"
	}
	fmt.Fprintf(bw, "%s\n", source)
	if h.GSE {
		fmt.Fprintf(bw, "#COOR\nGSE\n")
	}
	fmt.Fprintf(bw, "yr mn dy hr min sec msec bx by bz vx vy vz dens temp\n")
	fmt.Fprintf(bw, "#START\n")

	for i, ts := range t.Times {
		fmt.Fprintf(bw, "%s %03d", ts.Format("2006 01 02 15 04 05"), ts.Nanosecond()/1e6)
		for _, q := range series.Quantities {
			v := t.Column(q)[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("row %d: column %s is not finite (%v)", i, q, v)
			}
			fmt.Fprintf(bw, " %*.2f", fieldWidth, v)
		}
		fmt.Fprintf(bw, "\n")
	}
	return bw.Flush()
}

// WriteRB writes the RB.SWIMF radiation belt companion file: a t=0 header
// keyed to the first sample, a format line, then per-sample proton density
// and flow speed magnitude.
func WriteRB(w io.Writer, t *series.Table) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.Len() == 0 {
		return fmt.Errorf("empty table")
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s ! iyear, iday, ihour corresponding to t=0\n",
		t.Times[0].Format("2006, 002, 15"))
	fmt.Fprintf(bw, "11902 data                   P+ NP NONLIN    P+ V (MOM)\n")
	fmt.Fprintf(bw, "dd mm yyyy hh mm ss.ms           #/cc          km/s\n")

	for i, ts := range t.Times {
		speed := math.Sqrt(t.Vx[i]*t.Vx[i] + t.Vy[i]*t.Vy[i] + t.Vz[i]*t.Vz[i])
		if math.IsNaN(t.Density[i]) || math.IsNaN(speed) {
			return fmt.Errorf("row %d: not finite", i)
		}
		// Seconds carry a 6-digit fractional part, matching the file layout
		// the radiation belt model was written against.
		fmt.Fprintf(bw, "%s.%06d     %8.3f     %8.3f\n",
			ts.Format("02 01 2006 15 04 05"), ts.Nanosecond()/1e3,
			t.Density[i], speed)
	}
	return bw.Flush()
}
