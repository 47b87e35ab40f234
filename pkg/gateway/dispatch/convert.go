package dispatch

import (
	"strconv"

	"github.com/vpbank/intellivue-gateway/intellivue/float"
)

func itoa(v uint16) string {
	return strconv.FormatUint(uint64(v), 10)
}

// decodeFloatOrZero decodes the protocol's custom decimal float, returning 0
// for a value that fails to decode (e.g. DecodeOutOfRange) rather than
// propagating an error through the observation path — a bad value on one
// attribute should not drop the rest of the batch.
func decodeFloatOrZero(raw uint32) float64 {
	v, err := float.Decode(raw)
	if err != nil {
		return 0
	}
	return v.Float64
}
