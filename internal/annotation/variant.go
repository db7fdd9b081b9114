package annotation

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/ironsheep/chiroplot-mcp/internal/imaging"
)

// Phase selects which point sequence receives the next point.
type Phase int

const (
	// Reference is the first (or only) line. In the comparison variant it is
	// the incorrect line.
	Reference Phase = iota
	// Actual is the corrected line of the comparison variant.
	Actual
)

func (p Phase) String() string {
	switch p {
	case Reference:
		return "reference"
	case Actual:
		return "actual"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParsePhase is the inverse of Phase.String.
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(s) {
	case "reference":
		return Reference, nil
	case "actual":
		return Actual, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidPhase, s)
	}
}

// Variant describes one flavour of the annotation workflow.
type Variant struct {
	Name string
	// Phases is 1 for a single line, 2 for reference then actual.
	Phases int
	// RequiresBitmap rejects point placement until a radiograph is loaded.
	RequiresBitmap bool
}

// Workflow variants.
var (
	SingleLine = Variant{Name: "single", Phases: 1, RequiresBitmap: true}
	Comparison = Variant{Name: "comparison", Phases: 2, RequiresBitmap: true}
	Basic      = Variant{Name: "basic", Phases: 1, RequiresBitmap: false}
)

// ParseVariant resolves a variant by name.
func ParseVariant(name string) (Variant, error) {
	for _, v := range []Variant{SingleLine, Comparison, Basic} {
		if strings.EqualFold(v.Name, name) {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("unknown variant %q (want single, comparison or basic)", name)
}

// Palette holds the colours used for one phase.
type Palette struct {
	Fill color.NRGBA
	Halo color.NRGBA
	Line color.NRGBA
}

var (
	greenPalette = Palette{Fill: mustHex("#22c55e"), Halo: mustHex("#16a34a"), Line: mustHex("#ef4444")}
	redPalette   = Palette{Fill: mustHex("#ef4444"), Halo: mustHex("#b91c1c"), Line: mustHex("#ef4444")}
	bluePalette  = Palette{Fill: mustHex("#2563eb"), Halo: mustHex("#1d4ed8"), Line: mustHex("#2563eb")}
)

// PaletteFor returns the colours of phase p under variant v.
func PaletteFor(v Variant, p Phase) Palette {
	if v.Phases < 2 {
		return greenPalette
	}
	if p == Actual {
		return bluePalette
	}
	return redPalette
}

func mustHex(hex string) color.NRGBA {
	c, err := imaging.ParseHexColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}
