package float

import (
	"math"
	"testing"
)

func TestDecodeWorkedExamples(t *testing.T) {
	cases := []struct {
		name    string
		encoded uint32
		want    float64
	}{
		{"32 via exponent -3 mantissa 32000", 0xFD007D00, 32},
		{"32 via exponent -1 mantissa 320", 0xFF000140, 32},
		{"3200 via exponent 1 mantissa 320", 0x01000140, 3200},
		{"3200 via exponent 2 mantissa 32", 0x02000020, 3200},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Decode(c.encoded)
			if err != nil {
				t.Fatalf("Decode(%#08x): unexpected error: %v", c.encoded, err)
			}
			if got.Float64 != c.want {
				t.Errorf("Decode(%#08x) = %v, want %v", c.encoded, got.Float64, c.want)
			}
			if got.Kind != KindNormal {
				t.Errorf("Decode(%#08x) kind = %v, want KindNormal", c.encoded, got.Kind)
			}
		})
	}
}

func TestDecodeSpecialMantissas(t *testing.T) {
	cases := []struct {
		name    string
		encoded uint32
		kind    Kind
	}{
		{"NaN", 0x007FFFFF, KindNaN},
		{"not at this resolution", 0x00800000, KindNotAtResolution},
		{"positive infinity", 0x007FFFFE, KindPositiveInfinity},
		{"negative infinity", 0x00800002, KindNegativeInfinity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Decode(c.encoded)
			if err != nil {
				t.Fatalf("Decode(%#08x): unexpected error: %v", c.encoded, err)
			}
			if got.Kind != c.kind {
				t.Errorf("Decode(%#08x) kind = %v, want %v", c.encoded, got.Kind, c.kind)
			}
			switch c.kind {
			case KindPositiveInfinity:
				if !math.IsInf(got.Float64, 1) {
					t.Errorf("Decode(%#08x) = %v, want +Inf", c.encoded, got.Float64)
				}
			case KindNegativeInfinity:
				if !math.IsInf(got.Float64, -1) {
					t.Errorf("Decode(%#08x) = %v, want -Inf", c.encoded, got.Float64)
				}
			default:
				if !math.IsNaN(got.Float64) {
					t.Errorf("Decode(%#08x) = %v, want NaN", c.encoded, got.Float64)
				}
			}
		})
	}
}

// TestDecodeGeneralFormula checks the mantissa*10^exponent relationship for a
// spread of mantissas and exponents outside the special set, including
// negative mantissas and negative exponents, which exercise the two's
// complement sign-extension paths.
func TestDecodeGeneralFormula(t *testing.T) {
	mantissas := []int32{0, 1, -1, 100, -100, 8388607, -8388608} // 24-bit range, excluding special values
	exponents := []int32{0, 1, -1, 5, -5, 127, -128}

	for _, m := range mantissas {
		for _, e := range exponents {
			mantissaBits := uint32(m) & mantissaMask
			if mantissaBits == mantissaNaN || mantissaBits == mantissaNotAtRes ||
				mantissaBits == mantissaPosInf || mantissaBits == mantissaNegInf {
				continue
			}
			exponentBits := uint32(e) & 0xff
			encoded := (exponentBits << 24) | mantissaBits

			got, err := Decode(encoded)
			if err != nil {
				t.Fatalf("Decode(%#08x): unexpected error: %v", encoded, err)
			}
			want := float64(m) * math.Pow(10, float64(e))
			if got.Float64 != want {
				t.Errorf("Decode(%#08x) = %v, want %v (mantissa %d, exponent %d)", encoded, got.Float64, want, m, e)
			}
		}
	}
}

func TestEncodeIsNotImplemented(t *testing.T) {
	if _, err := Encode(Value{Float64: 32}); err == nil {
		t.Error("Encode: expected error, got nil")
	}
}
