//go:build amd64 && !purego

package biquad

import (
	_ "github.com/W47K3R9/LudEQ/dsp/filter/biquad/internal/arch/amd64/unroll2" // register unrolled backend
	_ "github.com/W47K3R9/LudEQ/dsp/filter/biquad/internal/arch/generic"       // register generic backend
)
