package validate

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// Status is a per-check verdict.
type Status string

const (
	Pass Status = "pass"
	Fail Status = "fail"
)

func statusOf(ok bool) Status {
	if ok {
		return Pass
	}
	return Fail
}

// ReasonEmblemNotFound explains emblem checks that could not run.
const ReasonEmblemNotFound = "emblem not found"

// AspectRatio is the width/height check.
type AspectRatio struct {
	Status Status  `json:"status"`
	Actual float64 `json:"actual"`
}

// StripeProportion reports each band's share of the image height.
type StripeProportion struct {
	Status Status  `json:"status"`
	Top    float64 `json:"top"`
	Middle float64 `json:"middle"`
	Bottom float64 `json:"bottom"`
}

// ColorCheck is one band's colour verdict. Deviation is a percentage.
type ColorCheck struct {
	Status    Status  `json:"status"`
	Deviation float64 `json:"deviation"`
}

// Colors groups the three band colour checks.
type Colors struct {
	Saffron ColorCheck `json:"saffron"`
	White   ColorCheck `json:"white"`
	Green   ColorCheck `json:"green"`
}

// EmblemPosition is the centring check. Offsets are in pixels.
type EmblemPosition struct {
	Status  Status   `json:"status"`
	OffsetX *float64 `json:"offset_x,omitempty"`
	OffsetY *float64 `json:"offset_y,omitempty"`
	Reason  string   `json:"reason,omitempty"`
}

// EmblemSize compares the measured diameter with the expected one.
type EmblemSize struct {
	Status   Status   `json:"status"`
	Expected *float64 `json:"expected,omitempty"`
	Actual   *float64 `json:"actual,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// EmblemSpokes is the spoke count check.
type EmblemSpokes struct {
	Status          Status    `json:"status"`
	Detected        int       `json:"detected"`
	DFTK            *int      `json:"dft_k,omitempty"`
	DFTSignificance *float64  `json:"dft_significance,omitempty"`
	Angles          []float64 `json:"angles,omitempty"`
	Reason          string    `json:"reason,omitempty"`
}

// Report is the complete conformance verdict for one image.
type Report struct {
	AspectRatio      AspectRatio      `json:"aspect_ratio"`
	StripeProportion StripeProportion `json:"stripe_proportion"`
	Colors           Colors           `json:"colors"`
	ChakraPosition   EmblemPosition   `json:"chakra_position"`
	ChakraSize       EmblemSize       `json:"chakra_size"`
	ChakraSpokes     EmblemSpokes     `json:"chakra_spokes"`
	Notes            []string         `json:"notes"`
}

// Passed reports whether every check passed.
func (r Report) Passed() bool {
	for _, s := range []Status{
		r.AspectRatio.Status,
		r.StripeProportion.Status,
		r.Colors.Saffron.Status,
		r.Colors.White.Status,
		r.Colors.Green.Status,
		r.ChakraPosition.Status,
		r.ChakraSize.Status,
		r.ChakraSpokes.Status,
	} {
		if s != Pass {
			return false
		}
	}
	return true
}

// Failed lists the names of the checks that did not pass.
func (r Report) Failed() []string {
	var out []string
	add := func(name string, s Status) {
		if s != Pass {
			out = append(out, name)
		}
	}
	add("aspect_ratio", r.AspectRatio.Status)
	add("stripe_proportion", r.StripeProportion.Status)
	add("colors.saffron", r.Colors.Saffron.Status)
	add("colors.white", r.Colors.White.Status)
	add("colors.green", r.Colors.Green.Status)
	add("chakra_position", r.ChakraPosition.Status)
	add("chakra_size", r.ChakraSize.Status)
	add("chakra_spokes", r.ChakraSpokes.Status)
	return out
}

// JSON renders the report with two-space indentation.
func (r Report) JSON() ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// ExportPath returns dir/<base>_flag_validation.json for an image path.
// An empty image name exports as report_flag_validation.json.
func ExportPath(imagePath, dir string) string {
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	if imagePath == "" || base == "" || base == "." || base == string(filepath.Separator) {
		base = "report"
	}
	return filepath.Join(dir, base+"_flag_validation.json")
}
